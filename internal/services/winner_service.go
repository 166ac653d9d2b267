package services

import (
	"context"
	"strings"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// WinnerServiceImpl moves a winner NOT_CHOSEN -> CHOSEN -> COLLECTED
type WinnerServiceImpl struct {
	ServiceParams
}

var _ WinnerService = (*WinnerServiceImpl)(nil)

// NewWinnerService creates a new winner service
func NewWinnerService(params ServiceParams) *WinnerServiceImpl {
	return &WinnerServiceImpl{ServiceParams: params.withDefaults()}
}

func (s *WinnerServiceImpl) GetWinner(ctx context.Context, id string) (*models.Winner, error) {
	return s.Winners.FindByID(ctx, id)
}

// ChoosePrizeForWinner assigns a prize and consumes one unit of its stock in
// one unit of work. The stock increment only applies while consumed < stock,
// so the last unit goes to exactly one of several concurrent callers.
func (s *WinnerServiceImpl) ChoosePrizeForWinner(ctx context.Context, winnerID, prizeID string) (*models.Winner, error) {
	ctx, span := tracing.Tracer().Start(ctx, "WinnerService.ChoosePrizeForWinner")
	defer span.End()
	span.SetAttributes(attribute.String("winner.id", winnerID), attribute.String("prize.id", prizeID))

	var chosen *models.Winner
	now := s.now()
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		winner, err := s.Winners.FindByID(ctx, winnerID)
		if err != nil {
			return err
		}
		if winner.Status != models.WinnerStatusNotChosen {
			return invalidWinnerState(winner, "Winner has already chosen a prize")
		}

		prize, err := s.Prizes.FindByID(ctx, prizeID)
		if err != nil {
			return err
		}
		if err := checkPrizeSelectable(prize, now); err != nil {
			return err
		}

		ok, err := s.Prizes.ConsumeStock(ctx, prize.ID)
		if err != nil {
			return err
		}
		if !ok {
			s.Metrics.Conflicts.WithLabelValues("choose_prize").Inc()
			return stockExhausted(prize)
		}

		ok, err = s.Winners.TransitionStatus(ctx, winner.ID, models.WinnerStatusChange{
			From:    models.WinnerStatusNotChosen,
			To:      models.WinnerStatusChosen,
			At:      now,
			PrizeID: &prize.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			s.Metrics.Conflicts.WithLabelValues("choose_prize").Inc()
			return invalidWinnerState(winner, "Winner was updated by another request")
		}

		chosen, err = s.Winners.FindByID(ctx, winner.ID)
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	s.Metrics.PrizesChosen.Inc()
	s.publish(ctx, publisher.NewEvent(publisher.EventPrizeChosen, chosen.ID, now, chosen))
	s.Logger.Infow("prize chosen", "winner_id", chosen.ID, "prize_id", prizeID)
	return chosen, nil
}

func checkPrizeSelectable(prize *models.Prize, now time.Time) error {
	details := map[string]any{"prize_id": prize.ID}
	switch {
	case !prize.Active:
		return ierr.NewError("prize inactive").
			WithHint("Prize is not active").
			WithReportableDetails(details).
			Mark(ierr.ErrInvalidState)
	case prize.NotYetAvailable(now):
		return ierr.NewError("prize not yet available").
			WithHintf("Prize is available from %s", prize.AvailableFrom.Format("2006-01-02")).
			WithReportableDetails(details).
			Mark(ierr.ErrInvalidState)
	case prize.NoLongerAvailable(now):
		return ierr.NewError("prize no longer available").
			WithHintf("Prize was available until %s", prize.AvailableUntil.Format("2006-01-02")).
			WithReportableDetails(details).
			Mark(ierr.ErrInvalidState)
	case prize.Remaining() <= 0:
		return stockExhausted(prize)
	}
	return nil
}

func stockExhausted(prize *models.Prize) error {
	return ierr.NewError("prize stock exhausted").
		WithHintf("%s is out of stock", prize.Name).
		WithReportableDetails(map[string]any{"prize_id": prize.ID}).
		Mark(ierr.ErrConflict)
}

// CollectPrize records that a CHOSEN prize was handed over
func (s *WinnerServiceImpl) CollectPrize(ctx context.Context, winnerID, adminID, note string) (*models.Winner, error) {
	ctx, span := tracing.Tracer().Start(ctx, "WinnerService.CollectPrize")
	defer span.End()

	var collected *models.Winner
	now := s.now()
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		winner, err := s.Winners.FindByID(ctx, winnerID)
		if err != nil {
			return err
		}
		switch winner.Status {
		case models.WinnerStatusNotChosen:
			return invalidWinnerState(winner, "Winner has not chosen a prize yet")
		case models.WinnerStatusCollected:
			return invalidWinnerState(winner, "Prize has already been collected")
		}

		ok, err := s.Winners.TransitionStatus(ctx, winner.ID, models.WinnerStatusChange{
			From:    models.WinnerStatusChosen,
			To:      models.WinnerStatusCollected,
			At:      now,
			AdminID: optionalString(adminID),
			Note:    strings.TrimSpace(note),
		})
		if err != nil {
			return err
		}
		if !ok {
			return invalidWinnerState(winner, "Winner was updated by another request")
		}

		collected, err = s.Winners.FindByID(ctx, winner.ID)
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	s.Metrics.PrizesCollected.Inc()
	s.publish(ctx, publisher.NewEvent(publisher.EventPrizeCollected, collected.ID, now, collected))
	s.Logger.Infow("prize collected", "winner_id", collected.ID, "admin_id", adminID)
	return collected, nil
}

func invalidWinnerState(w *models.Winner, hint string) error {
	return ierr.NewError("winner not in the required state").
		WithHint(hint).
		WithReportableDetails(map[string]any{"winner_id": w.ID, "status": w.Status}).
		Mark(ierr.ErrInvalidState)
}
