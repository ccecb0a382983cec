package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/models"
	"stilltime/api/internal/repository"
	"stilltime/api/internal/subscription"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomsLocked  = errors.New("study rooms require a paid plan")
	ErrNotInRoom    = errors.New("not currently in a room")
)

// Rooms is the static catalog. Membership is tracked per user, not per
// room, so joining a second room implicitly leaves the first.
var Rooms = []models.Room{
	{ID: "mcat", Name: "MCAT Grind", Emoji: "🧬", Description: "Pre-med students pushing through content review and practice exams."},
	{ID: "lsat", Name: "LSAT Logic Lab", Emoji: "⚖️", Description: "Logic games, reading comp, and drilling until it clicks."},
	{ID: "bar", Name: "Bar Exam Bunker", Emoji: "🏛️", Description: "Bar preppers outlining, memorizing, and practicing essays."},
	{ID: "usmle", Name: "USMLE Step Studio", Emoji: "🩺", Description: "Med students working through question banks and flashcards."},
	{ID: "cfa", Name: "CFA Candidates", Emoji: "📈", Description: "Finance professionals grinding through the curriculum."},
	{ID: "gre", Name: "GRE Prep Hall", Emoji: "📚", Description: "Grad school hopefuls on vocab, quant, and essays."},
	{ID: "gmat", Name: "GMAT Focus Room", Emoji: "💼", Description: "B-school applicants sharpening quant and verbal."},
	{ID: "general", Name: "General Study Hall", Emoji: "🎓", Description: "Open room for any subject, any goal."},
}

type RoomService struct {
	presence    *repository.PresenceRepository
	stats       *repository.StatsRepository
	subs        *SubscriptionService
	presenceTTL time.Duration
	clk         clock.Clock
	log         zerolog.Logger
}

func NewRoomService(
	presence *repository.PresenceRepository,
	stats *repository.StatsRepository,
	subs *SubscriptionService,
	presenceTTL time.Duration,
	clk clock.Clock,
	log zerolog.Logger,
) *RoomService {
	return &RoomService{
		presence:    presence,
		stats:       stats,
		subs:        subs,
		presenceTTL: presenceTTL,
		clk:         clk,
		log:         log,
	}
}

func RoomByID(id string) (models.Room, bool) {
	for _, r := range Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return models.Room{}, false
}

type RoomSummary struct {
	Room        models.Room
	MemberCount int
}

// List returns the catalog with live member counts.
func (s *RoomService) List(ctx context.Context) ([]RoomSummary, error) {
	out := make([]RoomSummary, 0, len(Rooms))
	for _, room := range Rooms {
		count, err := s.presence.CountByRoom(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RoomSummary{Room: room, MemberCount: count})
	}
	return out, nil
}

func (s *RoomService) Join(ctx context.Context, userID string, roomID string, username string) (models.RoomPresence, error) {
	if _, ok := RoomByID(roomID); !ok {
		return models.RoomPresence{}, ErrRoomNotFound
	}

	now := s.clk.Now()
	sub, err := s.subs.Lookup(ctx, userID)
	if err != nil {
		return models.RoomPresence{}, err
	}
	if !subscription.HasAccess(sub, subscription.FeatureStudyRooms, now) {
		return models.RoomPresence{}, ErrRoomsLocked
	}

	totalHours := 0
	if stats, err := s.stats.Get(ctx, userID); err == nil {
		totalHours = stats.TotalHours
	} else if !errors.Is(err, repository.ErrStatsNotFound) {
		return models.RoomPresence{}, err
	}

	if username == "" {
		username = "Anonymous"
	}

	presence := models.RoomPresence{
		UserID:           userID,
		RoomID:           roomID,
		Username:         username,
		JoinedAt:         now,
		LastActiveAt:     now,
		TotalHoursAtJoin: totalHours,
	}
	if err := s.presence.Join(ctx, presence); err != nil {
		return models.RoomPresence{}, err
	}
	return presence, nil
}

func (s *RoomService) Leave(ctx context.Context, userID string) error {
	return s.presence.Leave(ctx, userID)
}

func (s *RoomService) Heartbeat(ctx context.Context, userID string) error {
	err := s.presence.Heartbeat(ctx, userID)
	if errors.Is(err, repository.ErrPresenceNotFound) {
		return ErrNotInRoom
	}
	return err
}

// Members lists a room's occupants ordered by focus hours banked at join
// time, which doubles as the room leaderboard.
func (s *RoomService) Members(ctx context.Context, roomID string, limit int) ([]models.RoomPresence, error) {
	if _, ok := RoomByID(roomID); !ok {
		return nil, ErrRoomNotFound
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.presence.ListByRoom(ctx, roomID, limit)
}

// SweepStale drops members whose heartbeats stopped. The scheduler runs
// this on an interval.
func (s *RoomService) SweepStale(ctx context.Context) (int64, error) {
	return s.presence.DeleteStale(ctx, s.presenceTTL)
}
