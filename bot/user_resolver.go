package bot

import (
	"context"
	"sync"
	"time"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// memberCacheTTL bounds how stale a cached member or absence may be
const memberCacheTTL = 5 * time.Minute

type memberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

type memberKey struct {
	guildID int64
	userID  int64
}

type cachedMember struct {
	member  *models.Member // nil when the user is not in the guild
	expires time.Time
}

// UserResolver looks up guild members through the REST API with a short-lived cache
type UserResolver struct {
	session memberFetcher

	cache      map[memberKey]cachedMember
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	now        func() time.Time
}

var _ service.MemberResolver = (*UserResolver)(nil)

// NewUserResolver creates a new user resolver
func NewUserResolver(session memberFetcher) *UserResolver {
	return &UserResolver{
		session:  session,
		cache:    make(map[memberKey]cachedMember),
		cacheTTL: memberCacheTTL,
		now:      time.Now,
	}
}

// ResolveMember returns nil, nil when the user has left the guild or never joined it
func (r *UserResolver) ResolveMember(ctx context.Context, guildID, userID int64) (*models.Member, error) {
	key := memberKey{guildID: guildID, userID: userID}

	r.cacheMutex.RLock()
	cached, ok := r.cache[key]
	r.cacheMutex.RUnlock()
	if ok && r.now().Before(cached.expires) {
		return cached.member, nil
	}

	m, err := r.session.GuildMember(common.FormatSnowflake(guildID), common.FormatSnowflake(userID), discordgo.WithContext(ctx))
	var member *models.Member
	switch {
	case isUnknown(err, discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser):
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).Debug("User is not a member of the guild")
	case err != nil:
		return nil, mapError(err)
	default:
		if member, err = common.ToMember(m, guildID); err != nil {
			return nil, err
		}
	}

	r.Store(guildID, userID, member)
	return member, nil
}

// Store caches a member delivered by the gateway. A nil member caches an absence.
func (r *UserResolver) Store(guildID, userID int64, member *models.Member) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()

	now := r.now()
	for k, v := range r.cache {
		if !now.Before(v.expires) {
			delete(r.cache, k)
		}
	}
	r.cache[memberKey{guildID: guildID, userID: userID}] = cachedMember{member: member, expires: now.Add(r.cacheTTL)}
}

// Forget drops a cached member after it changed or left
func (r *UserResolver) Forget(guildID, userID int64) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()
	delete(r.cache, memberKey{guildID: guildID, userID: userID})
}
