package handlers

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"go.uber.org/zap"
)

// relations answers the graph questions several handlers ask before acting
// or notifying.
type relations struct {
	friendships repositories.FriendshipRepository
	follows     repositories.FollowRepository
	blocks      repositories.BlockRepository
}

// connected reports whether actor and owner are friends or actor follows
// owner. Interaction notifications are only sent between connected users.
func (r relations) connected(actorID, ownerID uint) (bool, error) {
	friends, err := r.friendships.AreFriends(actorID, ownerID)
	if err != nil || friends {
		return friends, err
	}
	return r.follows.IsFollowing(actorID, ownerID)
}

func (r relations) blocked(a, b uint) (bool, error) {
	return r.blocks.IsBlockedEither(a, b)
}

// audience lists the friends and followers of userID.
func (r relations) audience(userID uint) ([]uint, error) {
	friends, err := r.friendships.GetFriendIDs(userID)
	if err != nil {
		return nil, err
	}
	followers, err := r.follows.GetFollowerIDs(userID)
	if err != nil {
		return nil, err
	}
	return append(friends, followers...), nil
}

// ownerNotifier sends interaction notifications (comments, reactions) to
// the owner of the content, only when actor and owner are connected.
type ownerNotifier struct {
	relations relations
	notifier  *notifier.Notifier
	log       *zap.Logger
}

func (o ownerNotifier) notify(n models.Notification) {
	if n.ActorID == n.RecipientID {
		return
	}
	ok, err := o.relations.connected(n.ActorID, n.RecipientID)
	if err != nil {
		o.log.Warn("failed to check relation",
			zap.Uint("actor_id", n.ActorID),
			zap.Uint("owner_id", n.RecipientID),
			zap.Error(err),
		)
		return
	}
	if ok {
		o.notifier.Emit(n)
	}
}
