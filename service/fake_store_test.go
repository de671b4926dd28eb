package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
)

// fakeStore is an in-memory store whose units of work snapshot state on Begin and Nested
// and restore it on Rollback.
type fakeStore struct {
	state    *fakeState
	events   []events.Event
	commits  int
	nextID   int64
	failNext map[string]error
}

type voteKey struct {
	messageID int64
	memberID  int64
}

type storedVote struct {
	channelID int64
	guildID   int64
	vote      models.Vote
}

type memberSubKey struct {
	memberID int64
	roleID   int64
}

type fakeState struct {
	balances      map[models.Account]models.Bobux
	history       []*models.BalanceHistory
	votes         map[voteKey]storedVote
	settings      map[int64]models.GuildSettings
	webhooks      map[int64]int64
	subscriptions map[int64]models.Subscription
	memberSubs    map[memberSubKey]time.Time
	channels      map[int64]models.PurchasedChannel
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: &fakeState{
			balances:      make(map[models.Account]models.Bobux),
			votes:         make(map[voteKey]storedVote),
			settings:      make(map[int64]models.GuildSettings),
			webhooks:      make(map[int64]int64),
			subscriptions: make(map[int64]models.Subscription),
			memberSubs:    make(map[memberSubKey]time.Time),
			channels:      make(map[int64]models.PurchasedChannel),
		},
		failNext: make(map[string]error),
	}
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		balances:      make(map[models.Account]models.Bobux, len(s.balances)),
		history:       append([]*models.BalanceHistory(nil), s.history...),
		votes:         make(map[voteKey]storedVote, len(s.votes)),
		settings:      make(map[int64]models.GuildSettings, len(s.settings)),
		webhooks:      make(map[int64]int64, len(s.webhooks)),
		subscriptions: make(map[int64]models.Subscription, len(s.subscriptions)),
		memberSubs:    make(map[memberSubKey]time.Time, len(s.memberSubs)),
		channels:      make(map[int64]models.PurchasedChannel, len(s.channels)),
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.votes {
		c.votes[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	for k, v := range s.webhooks {
		c.webhooks[k] = v
	}
	for k, v := range s.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range s.memberSubs {
		c.memberSubs[k] = v
	}
	for k, v := range s.channels {
		c.channels[k] = v
	}
	return c
}

// failOn makes the next call of the named repository operation return err
func (s *fakeStore) failOn(op string, err error) {
	s.failNext[op] = err
}

func (s *fakeStore) takeFailure(op string) error {
	err, ok := s.failNext[op]
	if !ok {
		return nil
	}
	delete(s.failNext, op)
	return err
}

func (s *fakeStore) balance(userID, guildID int64) models.Bobux {
	return s.state.balances[models.NewAccount(userID, guildID)]
}

func (s *fakeStore) setBalance(userID, guildID int64, b models.Bobux) {
	s.state.balances[models.NewAccount(userID, guildID)] = b
}

func (s *fakeStore) vote(messageID, memberID int64) models.Vote {
	return s.state.votes[voteKey{messageID, memberID}].vote
}

func (s *fakeStore) putVote(guildID, channelID, messageID, memberID int64, v models.Vote) {
	s.state.votes[voteKey{messageID, memberID}] = storedVote{channelID: channelID, guildID: guildID, vote: v}
}

func (s *fakeStore) putSettings(settings models.GuildSettings) {
	s.state.settings[settings.GuildID] = settings
}

func (s *fakeStore) eventsOfType(t events.EventType) []events.Event {
	var matched []events.Event
	for _, e := range s.events {
		if e.Type() == t {
			matched = append(matched, e)
		}
	}
	return matched
}

// CreateForGuild implements UnitOfWorkFactory
func (s *fakeStore) CreateForGuild(guildID int64) UnitOfWork {
	return &fakeUnitOfWork{store: s, guildID: guildID}
}

// ListSyncTargets implements GuildDirectory
func (s *fakeStore) ListSyncTargets(ctx context.Context) ([]*models.SyncTarget, error) {
	var targets []*models.SyncTarget
	for _, gs := range s.state.settings {
		if gs.MemesChannelID != nil && gs.LastMemesMessageID != nil {
			targets = append(targets, &models.SyncTarget{
				GuildID:            gs.GuildID,
				MemesChannelID:     *gs.MemesChannelID,
				LastMemesMessageID: *gs.LastMemesMessageID,
			})
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].GuildID < targets[j].GuildID })
	return targets, nil
}

// ListSubscriptionGuilds implements GuildDirectory
func (s *fakeStore) ListSubscriptionGuilds(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	var guilds []int64
	for key := range s.state.memberSubs {
		sub := s.state.subscriptions[key.roleID]
		if !seen[sub.GuildID] {
			seen[sub.GuildID] = true
			guilds = append(guilds, sub.GuildID)
		}
	}
	sort.Slice(guilds, func(i, j int) bool { return guilds[i] < guilds[j] })
	return guilds, nil
}

type fakeUnitOfWork struct {
	store    *fakeStore
	guildID  int64
	depth    int
	parent   *fakeUnitOfWork
	snapshot *fakeState
	active   bool
	pending  []events.Event
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.snapshot = u.store.state.clone()
	u.active = true
	return nil
}

func (u *fakeUnitOfWork) Nested(ctx context.Context) (UnitOfWork, error) {
	if !u.active {
		return nil, fmt.Errorf("unit of work not started")
	}
	return &fakeUnitOfWork{
		store:    u.store,
		guildID:  u.guildID,
		depth:    u.depth + 1,
		parent:   u,
		snapshot: u.store.state.clone(),
		active:   true,
	}, nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.active = false
	if u.parent != nil {
		u.parent.pending = append(u.parent.pending, u.pending...)
	} else {
		u.store.events = append(u.store.events, u.pending...)
		u.store.commits++
	}
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.store.state = u.snapshot
	u.active = false
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Depth() int     { return u.depth }
func (u *fakeUnitOfWork) GuildID() int64 { return u.guildID }

func (u *fakeUnitOfWork) MemberRepository() MemberRepository { return fakeMemberRepo{u} }
func (u *fakeUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return fakeHistoryRepo{u}
}
func (u *fakeUnitOfWork) VoteRepository() VoteRepository { return fakeVoteRepo{u} }
func (u *fakeUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return fakeSettingsRepo{u}
}
func (u *fakeUnitOfWork) WebhookRepository() WebhookRepository { return fakeWebhookRepo{u.store} }
func (u *fakeUnitOfWork) SubscriptionRepository() SubscriptionRepository {
	return fakeSubscriptionRepo{u}
}
func (u *fakeUnitOfWork) PurchasedChannelRepository() PurchasedChannelRepository {
	return fakeChannelRepo{u}
}
func (u *fakeUnitOfWork) EventBus() EventPublisher { return fakePublisher{u} }

type fakePublisher struct{ u *fakeUnitOfWork }

func (p fakePublisher) Publish(e events.Event) { p.u.pending = append(p.u.pending, e) }

type fakeMemberRepo struct{ u *fakeUnitOfWork }

func (r fakeMemberRepo) GetBalance(ctx context.Context, userID int64) (models.Bobux, error) {
	if err := r.u.store.takeFailure("GetBalance"); err != nil {
		return models.ZeroBobux, err
	}
	return r.u.store.balance(userID, r.u.guildID), nil
}

func (r fakeMemberRepo) LockBalance(ctx context.Context, userID int64) (models.Bobux, error) {
	if err := r.u.store.takeFailure("LockBalance"); err != nil {
		return models.ZeroBobux, err
	}
	return r.u.store.balance(userID, r.u.guildID), nil
}

func (r fakeMemberRepo) SetBalance(ctx context.Context, userID int64, balance models.Bobux) error {
	if err := r.u.store.takeFailure("SetBalance"); err != nil {
		return err
	}
	r.u.store.setBalance(userID, r.u.guildID, balance)
	return nil
}

func (r fakeMemberRepo) Leaderboard(ctx context.Context, limit int) ([]*models.MemberBalance, error) {
	var rows []*models.MemberBalance
	for account, balance := range r.u.store.state.balances {
		if account.GuildID == r.u.guildID {
			rows = append(rows, &models.MemberBalance{UserID: account.UserID, GuildID: account.GuildID, Balance: balance})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Balance.Cmp(rows[j].Balance); c != 0 {
			return c > 0
		}
		return rows[i].UserID < rows[j].UserID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type fakeHistoryRepo struct{ u *fakeUnitOfWork }

func (r fakeHistoryRepo) Record(ctx context.Context, history *models.BalanceHistory) error {
	r.u.store.nextID++
	history.ID = r.u.store.nextID
	history.GuildID = r.u.guildID
	r.u.store.state.history = append(r.u.store.state.history, history)
	return nil
}

func (r fakeHistoryRepo) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	var rows []*models.BalanceHistory
	for i := len(r.u.store.state.history) - 1; i >= 0 && (limit <= 0 || len(rows) < limit); i-- {
		h := r.u.store.state.history[i]
		if h.UserID == userID && h.GuildID == r.u.guildID {
			rows = append(rows, h)
		}
	}
	return rows, nil
}

type fakeVoteRepo struct{ u *fakeUnitOfWork }

func (r fakeVoteRepo) GetPrevious(ctx context.Context, messageID, memberID int64) (models.Vote, error) {
	return r.u.store.vote(messageID, memberID), nil
}

func (r fakeVoteRepo) Record(ctx context.Context, messageID, channelID, memberID int64, vote models.Vote) (models.Vote, error) {
	if vote == models.VoteNone {
		return models.VoteNone, fmt.Errorf("cannot record an empty vote")
	}
	previous := r.u.store.vote(messageID, memberID)
	r.u.store.putVote(r.u.guildID, channelID, messageID, memberID, vote)
	return previous, nil
}

func (r fakeVoteRepo) Delete(ctx context.Context, messageID, memberID int64, expected models.Vote) (models.Vote, error) {
	key := voteKey{messageID, memberID}
	stored, ok := r.u.store.state.votes[key]
	if !ok || (expected != models.VoteNone && stored.vote != expected) {
		return models.VoteNone, nil
	}
	delete(r.u.store.state.votes, key)
	return stored.vote, nil
}

func (r fakeVoteRepo) DeleteAllForMessage(ctx context.Context, messageID int64) (map[int64]models.Vote, error) {
	previous := make(map[int64]models.Vote)
	for key, stored := range r.u.store.state.votes {
		if key.messageID == messageID && stored.guildID == r.u.guildID {
			previous[key.memberID] = stored.vote
			delete(r.u.store.state.votes, key)
		}
	}
	return previous, nil
}

func (r fakeVoteRepo) ListVotedMessages(ctx context.Context) ([]*models.VotedMessage, error) {
	seen := make(map[int64]bool)
	var messages []*models.VotedMessage
	for key, stored := range r.u.store.state.votes {
		if stored.guildID == r.u.guildID && !seen[key.messageID] {
			seen[key.messageID] = true
			messages = append(messages, &models.VotedMessage{MessageID: key.messageID, ChannelID: stored.channelID})
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].MessageID < messages[j].MessageID })
	return messages, nil
}

type fakeSettingsRepo struct{ u *fakeUnitOfWork }

func (r fakeSettingsRepo) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	settings, ok := r.u.store.state.settings[guildID]
	if !ok {
		settings = models.GuildSettings{GuildID: guildID}
		r.u.store.state.settings[guildID] = settings
	}
	return &settings, nil
}

func (r fakeSettingsRepo) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	r.u.store.state.settings[settings.GuildID] = *settings
	return nil
}

func (r fakeSettingsRepo) SetLastMemesMessage(ctx context.Context, guildID, messageID int64) error {
	settings := r.u.store.state.settings[guildID]
	settings.GuildID = guildID
	if settings.LastMemesMessageID == nil || *settings.LastMemesMessageID < messageID {
		id := messageID
		settings.LastMemesMessageID = &id
	}
	r.u.store.state.settings[guildID] = settings
	return nil
}

type fakeWebhookRepo struct{ store *fakeStore }

func (r fakeWebhookRepo) GetMemberID(ctx context.Context, webhookID int64) (*int64, error) {
	memberID, ok := r.store.state.webhooks[webhookID]
	if !ok {
		return nil, nil
	}
	return &memberID, nil
}

func (r fakeWebhookRepo) RecordPuppet(ctx context.Context, webhookID, memberID int64) error {
	if _, ok := r.store.state.webhooks[webhookID]; ok {
		return ErrDuplicate
	}
	r.store.state.webhooks[webhookID] = memberID
	return nil
}

type fakeSubscriptionRepo struct{ u *fakeUnitOfWork }

func (r fakeSubscriptionRepo) state() *fakeState { return r.u.store.state }

func (r fakeSubscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) error {
	if _, ok := r.state().subscriptions[subscription.RoleID]; ok {
		return ErrDuplicate
	}
	subscription.GuildID = r.u.guildID
	r.state().subscriptions[subscription.RoleID] = *subscription
	return nil
}

func (r fakeSubscriptionRepo) Get(ctx context.Context, roleID int64) (*models.Subscription, error) {
	sub, ok := r.state().subscriptions[roleID]
	if !ok || sub.GuildID != r.u.guildID {
		return nil, nil
	}
	return &sub, nil
}

func (r fakeSubscriptionRepo) Delete(ctx context.Context, roleID int64) (bool, error) {
	sub, ok := r.state().subscriptions[roleID]
	if !ok || sub.GuildID != r.u.guildID {
		return false, nil
	}
	delete(r.state().subscriptions, roleID)
	for key := range r.state().memberSubs {
		if key.roleID == roleID {
			delete(r.state().memberSubs, key)
		}
	}
	return true, nil
}

func (r fakeSubscriptionRepo) ListAvailable(ctx context.Context) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	for _, sub := range r.state().subscriptions {
		if sub.GuildID == r.u.guildID {
			s := sub
			subs = append(subs, &s)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].RoleID < subs[j].RoleID })
	return subs, nil
}

func (r fakeSubscriptionRepo) ListForMember(ctx context.Context, memberID int64) ([]*models.SubscriptionListing, error) {
	subs, _ := r.ListAvailable(ctx)
	listings := make([]*models.SubscriptionListing, 0, len(subs))
	for _, sub := range subs {
		listing := &models.SubscriptionListing{Subscription: *sub}
		if since, ok := r.state().memberSubs[memberSubKey{memberID, sub.RoleID}]; ok {
			listing.SubscribedSince = &since
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (r fakeSubscriptionRepo) GetMemberSubscription(ctx context.Context, memberID, roleID int64) (*models.MemberSubscription, error) {
	since, ok := r.state().memberSubs[memberSubKey{memberID, roleID}]
	if !ok {
		return nil, nil
	}
	sub := r.state().subscriptions[roleID]
	return &models.MemberSubscription{
		MemberID:        memberID,
		RoleID:          roleID,
		GuildID:         sub.GuildID,
		PricePerWeek:    sub.PricePerWeek,
		SubscribedSince: since,
	}, nil
}

func (r fakeSubscriptionRepo) AddMemberSubscription(ctx context.Context, memberID, roleID int64, since time.Time) error {
	key := memberSubKey{memberID, roleID}
	if _, ok := r.state().memberSubs[key]; ok {
		return ErrDuplicate
	}
	r.state().memberSubs[key] = since
	return nil
}

func (r fakeSubscriptionRepo) RemoveMemberSubscription(ctx context.Context, memberID, roleID int64) (bool, error) {
	key := memberSubKey{memberID, roleID}
	if _, ok := r.state().memberSubs[key]; !ok {
		return false, nil
	}
	delete(r.state().memberSubs, key)
	return true, nil
}

func (r fakeSubscriptionRepo) ListMemberSubscriptions(ctx context.Context) ([]*models.MemberSubscription, error) {
	var subs []*models.MemberSubscription
	for key := range r.state().memberSubs {
		ms, _ := r.GetMemberSubscription(ctx, key.memberID, key.roleID)
		if ms.GuildID == r.u.guildID {
			subs = append(subs, ms)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].MemberID != subs[j].MemberID {
			return subs[i].MemberID < subs[j].MemberID
		}
		return subs[i].RoleID < subs[j].RoleID
	})
	return subs, nil
}

type fakeChannelRepo struct{ u *fakeUnitOfWork }

func (r fakeChannelRepo) Create(ctx context.Context, channel *models.PurchasedChannel) error {
	if err := r.u.store.takeFailure("CreateChannel"); err != nil {
		return err
	}
	channel.GuildID = r.u.guildID
	channel.PurchaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.u.store.state.channels[channel.ChannelID] = *channel
	return nil
}

func (r fakeChannelRepo) Get(ctx context.Context, channelID int64) (*models.PurchasedChannel, error) {
	channel, ok := r.u.store.state.channels[channelID]
	if !ok || channel.GuildID != r.u.guildID {
		return nil, nil
	}
	return &channel, nil
}

func (r fakeChannelRepo) Delete(ctx context.Context, channelID int64) error {
	delete(r.u.store.state.channels, channelID)
	return nil
}

func (r fakeChannelRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.PurchasedChannel, error) {
	all, _ := r.ListAll(ctx)
	var owned []*models.PurchasedChannel
	for _, c := range all {
		if c.OwnerID == ownerID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

func (r fakeChannelRepo) ListAll(ctx context.Context) ([]*models.PurchasedChannel, error) {
	var channels []*models.PurchasedChannel
	for _, channel := range r.u.store.state.channels {
		if channel.GuildID == r.u.guildID {
			c := channel
			channels = append(channels, &c)
		}
	}
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].OwnerID != channels[j].OwnerID {
			return channels[i].OwnerID < channels[j].OwnerID
		}
		return channels[i].ChannelID < channels[j].ChannelID
	})
	return channels, nil
}
