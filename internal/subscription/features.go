package subscription

import (
	"time"

	"stilltime/api/internal/models"
)

type Feature string

const (
	FeatureDashboard          Feature = "dashboard"
	FeatureExportData         Feature = "exportData"
	FeatureCustomImages       Feature = "customImages"
	FeatureStudyRooms         Feature = "studyRooms"
	FeatureUnlimitedImages    Feature = "unlimitedImages"
	FeatureCustomVideos       Feature = "customVideos"
	FeaturePriorityGeneration Feature = "priorityGeneration"
	FeatureHighResExports     Feature = "highResExports"
	FeatureVIPBadge           Feature = "vipBadge"
	FeatureCommercialLicense  Feature = "commercialLicense"
	FeatureAllFutureFeatures  Feature = "allFutureFeatures"
)

// HasAccess resolves the effective tier of the subscription and looks the
// feature up in its matrix. An absent subscription is the free tier.
func HasAccess(sub *models.Subscription, feature Feature, now time.Time) bool {
	f := FeaturesOf(TierOf(sub, now))

	switch feature {
	case FeatureDashboard:
		return f.Dashboard
	case FeatureExportData:
		return f.ExportData
	case FeatureCustomImages:
		return f.CustomImages
	case FeatureStudyRooms:
		return f.StudyRooms
	case FeatureUnlimitedImages:
		return f.UnlimitedImages
	case FeatureCustomVideos:
		return f.CustomVideos
	case FeaturePriorityGeneration:
		return f.PriorityGeneration
	case FeatureHighResExports:
		return f.HighResExports
	case FeatureVIPBadge:
		return f.VIPBadge
	case FeatureCommercialLicense:
		return f.CommercialLicense
	case FeatureAllFutureFeatures:
		return f.AllFutureFeatures
	default:
		return false
	}
}
