package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/middleware"
	"stilltime/api/internal/subscription"
)

func (h HandlerSet) SubscriptionStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.subService.Current(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load subscription"})
		return
	}

	resp := gin.H{
		"tier":        view.Tier,
		"displayName": subscription.DisplayName(view.Tier),
		"features":    featureMap(view.Features),
	}

	if view.Subscription != nil {
		remaining, _ := subscription.RemainingImageCredits(view.Subscription, h.clk.Now())
		resp["status"] = view.Subscription.Status
		resp["currentPeriodEnd"] = view.Subscription.CurrentPeriodEnd
		resp["imageCreditsUsed"] = view.Subscription.ImageCreditsUsed
		resp["imageCreditsRemaining"] = remaining
	}

	c.JSON(http.StatusOK, gin.H{"subscription": resp})
}

// SubscriptionFeatures returns just the feature matrix for the caller's
// effective tier, for clients that gate UI without the full record.
func (h HandlerSet) SubscriptionFeatures(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.subService.Current(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":     view.Tier,
		"features": featureMap(view.Features),
	})
}

// hasFeature resolves the caller's effective tier. A failed read degrades
// to the free tier rather than erroring the request.
func (h HandlerSet) hasFeature(c *gin.Context, userID string, feature subscription.Feature) bool {
	sub, err := h.subService.Lookup(c.Request.Context(), userID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("subscription lookup failed")
		return false
	}
	return subscription.HasAccess(sub, feature, h.clk.Now())
}

func featureMap(f subscription.Features) gin.H {
	return gin.H{
		"dashboard":          f.Dashboard,
		"exportData":         f.ExportData,
		"customImages":       f.CustomImages,
		"studyRooms":         f.StudyRooms,
		"unlimitedImages":    f.UnlimitedImages,
		"customVideos":       f.CustomVideos,
		"priorityGeneration": f.PriorityGeneration,
		"highResExports":     f.HighResExports,
		"vipBadge":           f.VIPBadge,
		"commercialLicense":  f.CommercialLicense,
		"allFutureFeatures":  f.AllFutureFeatures,
		"printDiscountPct":   f.PrintDiscountPct,
	}
}
