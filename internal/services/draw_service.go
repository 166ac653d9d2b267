package services

import (
	"context"
	"math/rand/v2"
	"strings"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl runs lottery draws over vouchers carrying a lottery number
type DrawServiceImpl struct {
	ServiceParams

	// Intn returns a uniform integer in [0, n). Replaced in tests.
	Intn func(n int) int
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(params ServiceParams) *DrawServiceImpl {
	return &DrawServiceImpl{ServiceParams: params.withDefaults(), Intn: rand.IntN}
}

// CreateDraw opens an ACTIVE draw over [StartsAt, EndsAt]
func (s *DrawServiceImpl) CreateDraw(ctx context.Context, req *models.CreateDrawRequest) (*models.LotteryDraw, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ierr.NewError("draw name is required").
			WithHint("Draw name is required").
			Mark(ierr.ErrValidation)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ierr.NewError("draw window is empty").
			WithHint("Draw end must be after its start").
			Mark(ierr.ErrValidation)
	}

	now := s.now()
	draw := &models.LotteryDraw{
		ID:          models.GenerateID(models.IDPrefixDraw),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      models.DrawStatusActive,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Draws.Create(ctx, draw); err != nil {
		return nil, err
	}
	return draw, nil
}

func (s *DrawServiceImpl) GetDraw(ctx context.Context, id string) (*models.LotteryDraw, error) {
	return s.Draws.FindByID(ctx, id)
}

func (s *DrawServiceImpl) ListDraws(ctx context.Context, page, limit int) ([]*models.LotteryDraw, error) {
	return s.Draws.FindAll(ctx, page, limit)
}

// RunLotteryDraw picks winnerCount distinct vouchers from the draw's pool with
// a Fisher-Yates shuffle and records them as NOT_CHOSEN winners. Winners and
// the distributed counter are written in one unit of work.
func (s *DrawServiceImpl) RunLotteryDraw(ctx context.Context, drawID string, winnerCount int) (*models.DrawResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "DrawService.RunLotteryDraw")
	defer span.End()
	span.SetAttributes(attribute.String("draw.id", drawID), attribute.Int("draw.winner_count", winnerCount))

	if winnerCount < 1 {
		return nil, ierr.NewError("winner count must be positive").
			WithHint("At least one winner must be drawn").
			Mark(ierr.ErrValidation)
	}

	var result *models.DrawResult
	now := s.now()
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		// held until commit so the eligible pool below cannot go stale
		draw, err := s.Draws.FindByIDForUpdate(ctx, drawID)
		if err != nil {
			return err
		}
		if draw.Status != models.DrawStatusActive {
			return ierr.NewError("draw is not active").
				WithHintf("Draw is %s", strings.ToLower(string(draw.Status))).
				WithReportableDetails(map[string]any{"draw_id": draw.ID, "status": draw.Status}).
				Mark(ierr.ErrInvalidState)
		}

		pool, err := s.eligiblePool(ctx, draw)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return ierr.NewError("no eligible vouchers").
				WithHint("No vouchers with a lottery number in this draw period").
				WithReportableDetails(map[string]any{"draw_id": draw.ID}).
				Mark(ierr.ErrValidation)
		}
		if len(pool) < winnerCount {
			return ierr.NewError("pool smaller than winner count").
				WithHintf("Only %d eligible vouchers for %d winners", len(pool), winnerCount).
				WithReportableDetails(map[string]any{"draw_id": draw.ID, "pool": len(pool), "winners": winnerCount}).
				Mark(ierr.ErrValidation)
		}

		selected := s.shuffle(pool)[:winnerCount]
		winners := lo.Map(selected, func(v *models.Voucher, _ int) *models.Winner {
			return &models.Winner{
				ID:            models.GenerateID(models.IDPrefixWinner),
				DrawID:        draw.ID,
				MemberID:      v.MemberID,
				VoucherID:     v.ID,
				LotteryNumber: lo.FromPtr(v.LotteryNumber),
				Status:        models.WinnerStatusNotChosen,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
		})
		if err := s.Winners.CreateMany(ctx, winners); err != nil {
			if ierr.IsConflict(err) {
				s.Metrics.Conflicts.WithLabelValues("run_draw").Inc()
			}
			return err
		}

		ok, err := s.Draws.IncrementDistributed(ctx, draw.ID, len(winners))
		if err != nil {
			return err
		}
		if !ok {
			s.Metrics.Conflicts.WithLabelValues("run_draw").Inc()
			return ierr.NewError("draw changed during run").
				WithHint("Draw was closed by another request").
				Mark(ierr.ErrConflict)
		}

		draw, err = s.Draws.FindByID(ctx, draw.ID)
		if err != nil {
			return err
		}
		result = &models.DrawResult{Draw: draw, Winners: winners, PoolSize: len(pool)}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	s.Metrics.DrawsRun.Inc()
	s.Metrics.WinnersDrawn.Add(float64(len(result.Winners)))
	s.Logger.Infow("lottery draw executed", "draw_id", drawID, "pool", result.PoolSize, "winners", len(result.Winners))
	return result, nil
}

// eligiblePool lists ACTIVE vouchers with a lottery number created in the
// draw window, minus vouchers that already won in this draw.
func (s *DrawServiceImpl) eligiblePool(ctx context.Context, draw *models.LotteryDraw) ([]*models.Voucher, error) {
	vouchers, err := s.Vouchers.FindLotteryEligible(ctx, draw.StartsAt, draw.EndsAt)
	if err != nil {
		return nil, err
	}
	existing, err := s.Winners.FindByDrawID(ctx, draw.ID)
	if err != nil {
		return nil, err
	}
	won := lo.SliceToMap(existing, func(w *models.Winner) (string, struct{}) { return w.VoucherID, struct{}{} })
	return lo.Filter(vouchers, func(v *models.Voucher, _ int) bool {
		_, ok := won[v.ID]
		return !ok
	}), nil
}

// shuffle returns a uniformly random permutation of pool
func (s *DrawServiceImpl) shuffle(pool []*models.Voucher) []*models.Voucher {
	out := make([]*models.Voucher, len(pool))
	copy(out, pool)
	for i := len(out) - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CompleteDraw closes an ACTIVE draw
func (s *DrawServiceImpl) CompleteDraw(ctx context.Context, id string) (*models.LotteryDraw, error) {
	draw, err := s.closeDraw(ctx, id, models.DrawStatusCompleted)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, publisher.NewEvent(publisher.EventDrawCompleted, draw.ID, s.now(), draw))
	return draw, nil
}

// CancelDraw abandons an ACTIVE draw. Winners already drawn are kept.
func (s *DrawServiceImpl) CancelDraw(ctx context.Context, id string) (*models.LotteryDraw, error) {
	return s.closeDraw(ctx, id, models.DrawStatusCancelled)
}

func (s *DrawServiceImpl) closeDraw(ctx context.Context, id string, to models.DrawStatus) (*models.LotteryDraw, error) {
	var closed *models.LotteryDraw
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		draw, err := s.Draws.FindByID(ctx, id)
		if err != nil {
			return err
		}
		ok, err := s.Draws.TransitionStatus(ctx, id, models.DrawStatusActive, to)
		if err != nil {
			return err
		}
		if !ok {
			return ierr.NewError("draw is not active").
				WithHintf("Draw is already %s", strings.ToLower(string(draw.Status))).
				WithReportableDetails(map[string]any{"draw_id": id, "status": draw.Status}).
				Mark(ierr.ErrInvalidState)
		}
		closed, err = s.Draws.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("draw closed", "draw_id", id, "status", to)
	return closed, nil
}

func (s *DrawServiceImpl) ListWinners(ctx context.Context, drawID string) ([]*models.Winner, error) {
	if _, err := s.Draws.FindByID(ctx, drawID); err != nil {
		return nil, err
	}
	return s.Winners.FindByDrawID(ctx, drawID)
}
