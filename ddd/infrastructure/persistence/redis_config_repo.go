package persistence

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"compress-bot/ddd/domain/repo"
	"compress-bot/pkg/redisclient"
)

// Key layout, under the configured prefix:
//
//	<prefix>:settings        hash   encode settings document
//	<prefix>:admins          set    admin user ids
//	<prefix>:thumb:<user_id> string thumbnail file id
type settingsRepositoryImpl struct {
	rdb    *redis.Client
	prefix string
}

func NewSettingsRepository(client *redisclient.Client, keyPrefix string) repo.SettingsRepository {
	return &settingsRepositoryImpl{rdb: client.Raw(), prefix: keyPrefix}
}

func (r *settingsRepositoryImpl) settingsKey() string {
	return r.prefix + ":settings"
}

func (r *settingsRepositoryImpl) Load(ctx context.Context) (map[string]string, error) {
	fields, err := r.rdb.HGetAll(ctx, r.settingsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return fields, nil
}

func (r *settingsRepositoryImpl) Save(ctx context.Context, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	flat := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		flat = append(flat, k, v)
	}
	if err := r.rdb.HSet(ctx, r.settingsKey(), flat...).Err(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

type adminRepositoryImpl struct {
	rdb    *redis.Client
	prefix string
}

func NewAdminRepository(client *redisclient.Client, keyPrefix string) repo.AdminRepository {
	return &adminRepositoryImpl{rdb: client.Raw(), prefix: keyPrefix}
}

func (r *adminRepositoryImpl) adminsKey() string {
	return r.prefix + ":admins"
}

func (r *adminRepositoryImpl) Add(ctx context.Context, userID int64) (bool, error) {
	added, err := r.rdb.SAdd(ctx, r.adminsKey(), userID).Result()
	if err != nil {
		return false, fmt.Errorf("add admin: %w", err)
	}
	return added > 0, nil
}

func (r *adminRepositoryImpl) Remove(ctx context.Context, userID int64) (bool, error) {
	removed, err := r.rdb.SRem(ctx, r.adminsKey(), userID).Result()
	if err != nil {
		return false, fmt.Errorf("remove admin: %w", err)
	}
	return removed > 0, nil
}

func (r *adminRepositoryImpl) List(ctx context.Context) ([]int64, error) {
	members, err := r.rdb.SMembers(ctx, r.adminsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			// Skip corrupt members rather than failing the whole listing.
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *adminRepositoryImpl) IsMember(ctx context.Context, userID int64) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, r.adminsKey(), userID).Result()
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return ok, nil
}

type thumbnailRepositoryImpl struct {
	rdb    *redis.Client
	prefix string
}

func NewThumbnailRepository(client *redisclient.Client, keyPrefix string) repo.ThumbnailRepository {
	return &thumbnailRepositoryImpl{rdb: client.Raw(), prefix: keyPrefix}
}

func (r *thumbnailRepositoryImpl) thumbKey(userID int64) string {
	return fmt.Sprintf("%s:thumb:%d", r.prefix, userID)
}

func (r *thumbnailRepositoryImpl) Set(ctx context.Context, userID int64, fileID string) error {
	if err := r.rdb.Set(ctx, r.thumbKey(userID), fileID, 0).Err(); err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}
	return nil
}

func (r *thumbnailRepositoryImpl) Get(ctx context.Context, userID int64) (string, error) {
	fileID, err := r.rdb.Get(ctx, r.thumbKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get thumbnail: %w", err)
	}
	return fileID, nil
}

func (r *thumbnailRepositoryImpl) Delete(ctx context.Context, userID int64) (bool, error) {
	removed, err := r.rdb.Del(ctx, r.thumbKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete thumbnail: %w", err)
	}
	return removed > 0, nil
}
