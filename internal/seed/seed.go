// Package seed fills a database with demo profiles, follows and messages
// through the repository layer.
package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/repository"
)

type Options struct {
	Profiles       int
	Messages       int
	BroadcastRatio float64
	Workers        int
	UserPrefix     string
}

type Result struct {
	Profiles   int
	Follows    int
	Messages   int
	Broadcasts int
	Failed     int
}

type Seeder struct {
	profiles repository.ProfileRepository
	messages repository.MessageInserter
}

func New(profiles repository.ProfileRepository, messages repository.MessageInserter) *Seeder {
	return &Seeder{profiles: profiles, messages: messages}
}

func (o Options) validate() error {
	if o.Profiles < 1 {
		return errors.New("at least one profile is required")
	}
	if o.Messages < 0 {
		return errors.New("messages must not be negative")
	}
	if o.BroadcastRatio < 0 || o.BroadcastRatio > 1 {
		return errors.New("broadcast ratio must be within [0, 1]")
	}
	return nil
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	if err := opts.validate(); err != nil {
		return res, err
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.UserPrefix == "" {
		opts.UserPrefix = "user"
	}

	ids, err := s.ensureProfiles(ctx, opts)
	if err != nil {
		return res, err
	}
	res.Profiles = len(ids)
	res.Follows = s.followMesh(ctx, ids)

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return res, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	originals, failed := s.insertAll(ctx, pool, opts.Messages, func(i int) repository.NewMessage {
		return repository.NewMessage{
			UserID:    ids[i%len(ids)],
			Body:      fmt.Sprintf("message %d from %s%03d", i, opts.UserPrefix, i%len(ids)),
			GroupType: groupFor(i),
		}
	})
	res.Messages = len(originals)
	res.Failed += failed

	shares := int(float64(len(originals)) * opts.BroadcastRatio)
	broadcasts, failed := s.insertAll(ctx, pool, shares, func(i int) repository.NewMessage {
		target := originals[i%len(originals)]
		return repository.NewMessage{
			UserID:            ids[(i+1)%len(ids)],
			Body:              fmt.Sprintf("sharing message %d", target),
			GroupType:         model.MessageGroupPublic,
			BroadcastingMsgID: &target,
		}
	})
	res.Broadcasts = len(broadcasts)
	res.Failed += failed

	return res, ctx.Err()
}

func (s *Seeder) ensureProfiles(ctx context.Context, opts Options) ([]int64, error) {
	ids := make([]int64, 0, opts.Profiles)
	for i := 0; i < opts.Profiles; i++ {
		name := fmt.Sprintf("%s%03d", opts.UserPrefix, i)
		existing, err := s.profiles.QueryProfileByUserName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids = append(ids, existing.ID)
			continue
		}
		id, err := s.profiles.InsertProfile(ctx, repository.NewProfile{
			UserName:    name,
			FullName:    fmt.Sprintf("Demo User %d", i),
			Description: "seeded profile",
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// followMesh makes every profile follow every other one. Edges that already
// exist fail on the unique pair and are skipped.
func (s *Seeder) followMesh(ctx context.Context, ids []int64) int {
	n := 0
	for _, follower := range ids {
		for _, following := range ids {
			if follower == following {
				continue
			}
			if _, err := s.profiles.FollowUser(ctx, follower, following); err != nil {
				log.Debug().Err(err).Int64("follower_id", follower).Int64("following_id", following).Msg("follow skipped")
				continue
			}
			n++
		}
	}
	return n
}

func (s *Seeder) insertAll(ctx context.Context, pool *ants.Pool, n int, build func(i int) repository.NewMessage) ([]int64, int) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		ids    = make([]int64, 0, n)
		failed int
	)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		msg := build(i)
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			id, err := s.messages.InsertMessage(ctx, msg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Warn().Err(err).Int64("user_id", msg.UserID).Msg("seed message failed")
				return
			}
			ids = append(ids, id)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}
	wg.Wait()
	return ids, failed
}

func groupFor(i int) model.MessageGroupType {
	if i%5 == 4 {
		return model.MessageGroupCircle
	}
	return model.MessageGroupPublic
}
