// Package registration implements the tournament entry flow: nickname
// capture, tier selection, payment proof, and the operator verdict.
package registration

import (
	"errors"
	"log/slog"

	"tournament-bot/internal/session"
	"tournament-bot/internal/storage"
)

// Tiers is the fixed set of entry amounts, in currency units.
var Tiers = []int{15, 20, 30, 50}

var ErrUnknownTier = errors.New("unknown tier")

// ValidTier reports whether amount is one of the fixed entry tiers.
func ValidTier(amount int) bool {
	for _, t := range Tiers {
		if t == amount {
			return true
		}
	}
	return false
}

// Service is the participant-facing registration core plus the
// operator confirmation interface.
type Service struct {
	store    *storage.Storage
	sessions *session.Manager
	adminID  int64
	log      *slog.Logger
}

// New creates a registration service. adminID is the single identity
// allowed to confirm or reject payments.
func New(store *storage.Storage, sessions *session.Manager, adminID int64, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		adminID:  adminID,
		log:      log,
	}
}

// RequestJoin puts the participant into nickname capture. Calling it
// again while already waiting just re-issues the prompt.
func (s *Service) RequestJoin(userID int64) {
	s.sessions.Set(userID, session.StateAwaitingNickname)
}

// SubmitText handles free-form text. If the participant is in nickname
// capture, the text becomes their nickname (overwriting any previous one)
// and accepted is true: the caller should show the tier menu. Any other
// text is dropped with no side effect and accepted is false.
func (s *Service) SubmitText(userID int64, text string) (accepted bool, err error) {
	if text == "" || s.sessions.Get(userID) != session.StateAwaitingNickname {
		return false, nil
	}

	if err := s.store.UpsertParticipant(userID, text); err != nil {
		return false, err
	}
	s.sessions.Clear(userID)

	s.log.Info("nickname set", "user_id", userID, "nickname", text)
	return true, nil
}

// SelectTier opens a pending entry for the chosen amount.
// Returns ErrUnknownTier for amounts outside the fixed set,
// storage.ErrNoNickname before registration, and storage.ErrOpenEntry
// while another entry is awaiting payment or confirmation.
func (s *Service) SelectTier(userID int64, amount int) (*storage.Entry, error) {
	if !ValidTier(amount) {
		return nil, ErrUnknownTier
	}

	e, err := s.store.CreateEntry(userID, amount)
	if err != nil {
		return nil, err
	}

	s.log.Info("entry created", "user_id", userID, "entry_id", e.ID, "amount", amount)
	return e, nil
}

// SubmitProof records that the participant sent a payment screenshot,
// moving their open entry to pending_confirmation. Idempotent on
// resubmission. storage.ErrNotFound means there is no open entry and
// the photo should be ignored.
func (s *Service) SubmitProof(userID int64) (*storage.Entry, error) {
	e, err := s.store.MarkProofSubmitted(userID)
	if err != nil {
		return nil, err
	}

	s.log.Info("proof submitted", "user_id", userID, "entry_id", e.ID)
	return e, nil
}

// Participant returns the participant's profile.
// storage.ErrNotFound means the participant never registered.
func (s *Service) Participant(userID int64) (*storage.Participant, error) {
	return s.store.GetParticipant(userID)
}

// Status returns the status of the participant's current entry.
// storage.ErrNotFound means the participant never registered.
func (s *Service) Status(userID int64) (storage.Status, error) {
	e, err := s.store.CurrentEntry(userID)
	if err != nil {
		return "", err
	}
	return e.Status, nil
}

// Confirm marks the participant's open entry paid. Only the configured
// operator may call it: for anyone else authorized is false and nothing
// happens, deliberately without any visible response.
func (s *Service) Confirm(operatorID, userID int64) (authorized bool, err error) {
	return s.close(operatorID, userID, storage.StatusPaid)
}

// Reject marks the participant's open entry rejected, with the same
// authorization gate as Confirm.
func (s *Service) Reject(operatorID, userID int64) (authorized bool, err error) {
	return s.close(operatorID, userID, storage.StatusRejected)
}

func (s *Service) close(operatorID, userID int64, status storage.Status) (bool, error) {
	if s.adminID == 0 || operatorID != s.adminID {
		return false, nil
	}

	e, err := s.store.CloseEntry(userID, status)
	if err != nil {
		return true, err
	}

	s.log.Info("entry closed", "user_id", userID, "entry_id", e.ID, "status", e.Status)
	return true, nil
}
