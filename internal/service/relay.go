package service

import (
	"fmt"
	"sync"

	"relaybot/internal/domain"
	"relaybot/internal/repository"
	"relaybot/internal/session"
	"relaybot/internal/transport"

	"go.uber.org/zap"
)

// ApplyResult is the outcome of a user's connection request.
type ApplyResult int

const (
	ApplyAccepted ApplyResult = iota
	ApplyAlreadyPending
	ApplyAlreadyActive
	ApplyBanned
)

// ConnectResult is the outcome of an operator-initiated connection.
type ConnectResult int

const (
	ConnectOK ConnectResult = iota
	ConnectBanned
	ConnectNotifyFailed
)

// RelayResult is the outcome of routing a user's message to an operator.
type RelayResult int

const (
	RelayDelivered RelayResult = iota
	RelayBanned
	RelayPending
	RelayNoSession
	RelayFailed
)

// Delivery is one recipient's result from a fan-out notification.
type Delivery struct {
	To  domain.Address
	Err error
}

// RelayService is the relay engine: it owns every admission transition and
// routing mutation, consulting the ban store and operator directory.
//
// Telegram dispatches each update on its own goroutine, so mu serializes
// every guard-plus-transition sequence. A ban check and the transition it
// guards always execute as one unit; no interleaving can put a banned user
// into a session or split a ban between its two steps.
type RelayService struct {
	state   *session.State
	bans    repository.BanRepository
	dir     *OperatorDirectory
	courier transport.Courier
	logger  *zap.Logger

	mu sync.Mutex
}

// NewRelayService creates the relay engine.
func NewRelayService(
	state *session.State,
	bans repository.BanRepository,
	dir *OperatorDirectory,
	courier transport.Courier,
	logger *zap.Logger,
) *RelayService {
	return &RelayService{
		state:   state,
		bans:    bans,
		dir:     dir,
		courier: courier,
		logger:  logger,
	}
}

// StateOf returns the user's current session state.
func (s *RelayService) StateOf(userID int64) domain.SessionState {
	return s.state.Of(userID)
}

// IsBanned checks the durable ban list.
func (s *RelayService) IsBanned(userID int64) (bool, error) {
	return s.bans.IsBanned(userID)
}

// Apply handles a user's request to talk to an operator. On success the
// user becomes pending and all operators are notified; notification
// failures are logged but never undo the transition.
func (s *RelayService) Apply(userID int64, username string) (ApplyResult, error) {
	s.mu.Lock()
	banned, err := s.bans.IsBanned(userID)
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("ban check: %w", err)
	}
	if banned {
		s.mu.Unlock()
		return ApplyBanned, nil
	}

	ok, current := s.state.Apply(userID)
	s.mu.Unlock()

	if !ok {
		if current == domain.StateActive {
			return ApplyAlreadyActive, nil
		}
		return ApplyAlreadyPending, nil
	}

	s.logger.Info("User applied for a session", zap.Int64("user_id", userID))

	who := fmt.Sprintf("%d", userID)
	if username != "" {
		who = "@" + username
	}
	text := fmt.Sprintf("New chat request from %s (ID %d). Use /list or the panel to handle it.", who, userID)
	for _, d := range s.NotifyOperators(text) {
		if d.Err != nil {
			s.logger.Warn("Failed to notify operator of new request",
				zap.String("operator", d.To.String()),
				zap.Error(d.Err),
			)
		}
	}
	return ApplyAccepted, nil
}

// Cancel withdraws a user's pending request. Operators are told
// best-effort.
func (s *RelayService) Cancel(userID int64) bool {
	s.mu.Lock()
	ok := s.state.Cancel(userID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.logger.Info("User cancelled request", zap.Int64("user_id", userID))
	s.notifyOperatorsQuietly(fmt.Sprintf("User %d cancelled their chat request.", userID))
	return true
}

// EndByUser terminates the user's own active session. Operators are told
// best-effort.
func (s *RelayService) EndByUser(userID int64) bool {
	s.mu.Lock()
	ok := s.state.End(userID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.logger.Info("User ended session", zap.Int64("user_id", userID))
	s.notifyOperatorsQuietly(fmt.Sprintf("User %d ended their session.", userID))
	return true
}

// Accept approves a pending request. Returns false if the user is no
// longer pending (another operator already handled it). The user is
// notified after the transition commits.
func (s *RelayService) Accept(userID int64) bool {
	s.mu.Lock()
	ok := s.state.Accept(userID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.logger.Info("Request accepted", zap.Int64("user_id", userID))
	if _, err := s.courier.Send(domain.Numeric(userID), "An operator accepted your request. You are now connected; just type your messages here."); err != nil {
		s.logger.Warn("Failed to deliver acceptance notice",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return true
}

// Reject declines a pending request. Returns false if the user is no
// longer pending.
func (s *RelayService) Reject(userID int64) bool {
	s.mu.Lock()
	ok := s.state.Reject(userID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.logger.Info("Request rejected", zap.Int64("user_id", userID))
	if _, err := s.courier.Send(domain.Numeric(userID), "Sorry, an operator declined your chat request."); err != nil {
		s.logger.Warn("Failed to deliver rejection notice",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return true
}

// Connect opens a session with a user at an operator's initiative,
// regardless of any pending request. Refused if the user is banned. A
// failed user notification yields ConnectNotifyFailed but does not revert
// the session; the error return is reserved for ban-store failures.
func (s *RelayService) Connect(userID int64) (ConnectResult, error) {
	s.mu.Lock()
	banned, err := s.bans.IsBanned(userID)
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("ban check: %w", err)
	}
	if banned {
		s.mu.Unlock()
		return ConnectBanned, nil
	}
	s.state.Connect(userID)
	s.mu.Unlock()

	s.logger.Info("Operator connected user", zap.Int64("user_id", userID))
	if _, err := s.courier.Send(domain.Numeric(userID), "An operator opened a private chat with you. Just type your messages here."); err != nil {
		s.logger.Warn("Failed to deliver connect notice",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return ConnectNotifyFailed, nil
	}
	return ConnectOK, nil
}

// EndSession terminates a user's session at an operator's initiative.
// Returns false if the user had no active session.
func (s *RelayService) EndSession(userID int64) bool {
	s.mu.Lock()
	ok := s.state.End(userID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.logger.Info("Operator ended session", zap.Int64("user_id", userID))
	if _, err := s.courier.Send(domain.Numeric(userID), "The operator ended this session."); err != nil {
		s.logger.Warn("Failed to deliver session-end notice",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return true
}

// Ban puts a user on the durable ban list and drops any session membership.
// Membership is cleared before the ban row is written, inside the same
// transition lock, so no instant exists where a banned user is still
// pending or active.
func (s *RelayService) Ban(userID int64) error {
	s.mu.Lock()
	prior := s.state.Clear(userID)
	err := s.bans.Ban(userID)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("ban %d: %w", userID, err)
	}

	s.logger.Info("User banned",
		zap.Int64("user_id", userID),
		zap.String("prior_state", string(prior)),
	)
	if _, err := s.courier.Send(domain.Numeric(userID), "You have been banned and can no longer contact the operators."); err != nil {
		s.logger.Warn("Failed to deliver ban notice",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return nil
}

// Unban removes a user from the ban list. Their session state stays none.
func (s *RelayService) Unban(userID int64) error {
	s.mu.Lock()
	err := s.bans.Unban(userID)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("unban %d: %w", userID, err)
	}
	s.logger.Info("User unbanned", zap.Int64("user_id", userID))
	return nil
}

// RelayFromUser routes an inbound user message. An active user's message
// is copied to the first reachable operator and the delivered message ID
// recorded as a routing token; any other state yields a no-relay outcome.
func (s *RelayService) RelayFromUser(userID int64, src transport.MessageRef) (RelayResult, error) {
	s.mu.Lock()
	banned, err := s.bans.IsBanned(userID)
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("ban check: %w", err)
	}
	if banned {
		s.mu.Unlock()
		return RelayBanned, nil
	}
	current := s.state.Of(userID)
	s.mu.Unlock()

	switch current {
	case domain.StatePending:
		return RelayPending, nil
	case domain.StateNone:
		return RelayNoSession, nil
	}

	for _, addr := range s.dir.Candidates() {
		token, err := s.courier.Copy(addr, src)
		if err != nil {
			s.logger.Warn("Relay attempt failed",
				zap.Int64("user_id", userID),
				zap.String("operator", addr.String()),
				zap.Error(err),
			)
			continue
		}
		s.state.RecordRoute(token, userID)
		s.logger.Info("Relayed user message",
			zap.Int64("user_id", userID),
			zap.String("operator", addr.String()),
			zap.Int("token", token),
		)
		return RelayDelivered, nil
	}

	s.logger.Error("All operators unreachable", zap.Int64("user_id", userID))
	return RelayFailed, nil
}

// RelayReply routes an operator's reply back to the user who originated
// the replied-to relayed message. Returns the destination user on success;
// ok is false when the token is unknown.
func (s *RelayService) RelayReply(replyToken int, src transport.MessageRef) (userID int64, ok bool, err error) {
	userID, ok = s.state.ResolveRoute(replyToken)
	if !ok {
		return 0, false, nil
	}

	token, err := s.courier.Copy(domain.Numeric(userID), src)
	if err != nil {
		s.logger.Warn("Operator reply delivery failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return userID, true, fmt.Errorf("deliver to %d: %w", userID, err)
	}
	s.state.RecordLastToken(userID, token)
	return userID, true, nil
}

// Send delivers a direct text message to a user by numeric ID.
func (s *RelayService) Send(userID int64, text string) error {
	if _, err := s.courier.Send(domain.Numeric(userID), text); err != nil {
		return fmt.Errorf("send to %d: %w", userID, err)
	}
	return nil
}

// Broadcast delivers a text to every active user, returning how many of
// them were reachable.
func (s *RelayService) Broadcast(text string) (sent, total int) {
	active := s.state.Active()
	for _, userID := range active {
		if _, err := s.courier.Send(domain.Numeric(userID), text); err != nil {
			s.logger.Warn("Broadcast delivery failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent, len(active)
}

// Sessions returns the current active and pending user IDs.
func (s *RelayService) Sessions() (active, pending []int64) {
	return s.state.Active(), s.state.Pending()
}

// NotifyOperators fans a message out to every configured operator,
// preferring numeric addressing, and returns one result per recipient.
// Callers decide whether partial failure is user-visible.
func (s *RelayService) NotifyOperators(text string, opts ...interface{}) []Delivery {
	recipients := s.dir.Recipients()
	results := make([]Delivery, 0, len(recipients))
	for _, addr := range recipients {
		_, err := s.courier.Send(addr, text, opts...)
		results = append(results, Delivery{To: addr, Err: err})
	}
	return results
}

func (s *RelayService) notifyOperatorsQuietly(text string) {
	for _, d := range s.NotifyOperators(text) {
		if d.Err != nil {
			s.logger.Warn("Operator notification failed",
				zap.String("operator", d.To.String()),
				zap.Error(d.Err),
			)
		}
	}
}
