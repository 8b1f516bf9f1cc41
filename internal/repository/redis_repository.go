package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// Key layout:
//
//	<prefix>:reporters          hash   email -> reporter JSON
//	<prefix>:issues:<email>     list   issue JSON, append order
//	<prefix>:issue_owners       set    emails with at least one issue
const (
	reportersKeySuffix   = "reporters"
	issuesKeySuffix      = "issues"
	issueOwnersKeySuffix = "issue_owners"
)

// RedisReporterRepository stores reporters in a single Redis hash.
type RedisReporterRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisReporterRepository builds a reporter store on top of client.
func NewRedisReporterRepository(client *redis.Client, prefix string) *RedisReporterRepository {
	return &RedisReporterRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisReporterRepository) key() string {
	return r.prefix + ":" + reportersKeySuffix
}

func (r *RedisReporterRepository) Create(ctx context.Context, reporter *domain.Reporter) error {
	reporter.CreatedAt = r.now().UTC()
	payload, err := json.Marshal(reporter)
	if err != nil {
		return fmt.Errorf("encode reporter: %w", err)
	}
	created, err := r.client.HSetNX(ctx, r.key(), reporter.Email, payload).Result()
	if err != nil {
		return fmt.Errorf("hsetnx reporter: %w", err)
	}
	if !created {
		return ErrAlreadyExists
	}
	return nil
}

func (r *RedisReporterRepository) Upsert(ctx context.Context, reporter *domain.Reporter) error {
	existing, err := r.GetByEmail(ctx, reporter.Email)
	switch {
	case err == nil:
		reporter.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		reporter.CreatedAt = r.now().UTC()
	default:
		return err
	}

	payload, err := json.Marshal(reporter)
	if err != nil {
		return fmt.Errorf("encode reporter: %w", err)
	}
	if err := r.client.HSet(ctx, r.key(), reporter.Email, payload).Err(); err != nil {
		return fmt.Errorf("hset reporter: %w", err)
	}
	return nil
}

func (r *RedisReporterRepository) GetByEmail(ctx context.Context, email string) (*domain.Reporter, error) {
	raw, err := r.client.HGet(ctx, r.key(), email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hget reporter: %w", err)
	}
	var reporter domain.Reporter
	if err := json.Unmarshal(raw, &reporter); err != nil {
		return nil, fmt.Errorf("decode reporter %s: %w", email, err)
	}
	return &reporter, nil
}

func (r *RedisReporterRepository) List(ctx context.Context) ([]domain.Reporter, error) {
	all, err := r.client.HGetAll(ctx, r.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall reporters: %w", err)
	}
	result := make([]domain.Reporter, 0, len(all))
	for email, raw := range all {
		var reporter domain.Reporter
		if err := json.Unmarshal([]byte(raw), &reporter); err != nil {
			return nil, fmt.Errorf("decode reporter %s: %w", email, err)
		}
		result = append(result, reporter)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// RedisIssueRepository stores one Redis list per owner plus an owner index set.
type RedisIssueRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisIssueRepository builds an issue store on top of client.
func NewRedisIssueRepository(client *redis.Client, prefix string) *RedisIssueRepository {
	return &RedisIssueRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisIssueRepository) listKey(owner string) string {
	return r.prefix + ":" + issuesKeySuffix + ":" + owner
}

func (r *RedisIssueRepository) ownersKey() string {
	return r.prefix + ":" + issueOwnersKeySuffix
}

func (r *RedisIssueRepository) Append(ctx context.Context, issue *domain.Issue) error {
	issue.CreatedAt = r.now().UTC()
	payload, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("encode issue: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.listKey(issue.Owner), payload)
		pipe.SAdd(ctx, r.ownersKey(), issue.Owner)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append issue: %w", err)
	}
	return nil
}

func (r *RedisIssueRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Issue, error) {
	raws, err := r.client.LRange(ctx, r.listKey(owner), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange issues: %w", err)
	}
	return decodeIssues(owner, raws)
}

func (r *RedisIssueRepository) ListAll(ctx context.Context) (map[string][]domain.Issue, error) {
	owners, err := r.client.SMembers(ctx, r.ownersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers owners: %w", err)
	}
	if len(owners) == 0 {
		return map[string][]domain.Issue{}, nil
	}

	cmds := make(map[string]*redis.StringSliceCmd, len(owners))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, owner := range owners {
			cmds[owner] = pipe.LRange(ctx, r.listKey(owner), 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lrange issues: %w", err)
	}

	result := make(map[string][]domain.Issue, len(owners))
	for owner, cmd := range cmds {
		issues, err := decodeIssues(owner, cmd.Val())
		if err != nil {
			return nil, err
		}
		if len(issues) > 0 {
			result[owner] = issues
		}
	}
	return result, nil
}

func decodeIssues(owner string, raws []string) ([]domain.Issue, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	issues := make([]domain.Issue, 0, len(raws))
	for _, raw := range raws {
		var issue domain.Issue
		if err := json.Unmarshal([]byte(raw), &issue); err != nil {
			return nil, fmt.Errorf("decode issue for %s: %w", owner, err)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
