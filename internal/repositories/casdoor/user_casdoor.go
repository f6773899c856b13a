package casdoor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// directory is the subset of the Casdoor client the repository calls
type directory interface {
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

// maxConcurrentLookups bounds parallel calls to Casdoor in GetByIDs
const maxConcurrentLookups = 8

type UserCasdoor struct {
	client directory
	cache  *cache.CacheHelper
	ttl    time.Duration
}

func NewUserCasdoor(config CasdoorConfig, cacheManager *cache.CacheManager) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return newUserCasdoor(client, cacheManager)
}

func newUserCasdoor(client directory, cacheManager *cache.CacheManager) *UserCasdoor {
	var helper *cache.CacheHelper
	if cacheManager != nil {
		helper = cacheManager.User
	}
	return &UserCasdoor{
		client: client,
		cache:  helper,
		ttl:    cache.UserCacheConfig.TTL,
	}
}

func idKey(id string) string {
	return "id:" + id
}

// ===== CONVERSION METHODS =====

// convertCasdoorUserToModel converts Casdoor user to internal model
func convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}

	fullName := casdoorUser.DisplayName
	if fullName == "" {
		fullName = casdoorUser.Name
	}

	user := &models.User{
		ID:        casdoorUser.Id,
		FullName:  fullName,
		Email:     casdoorUser.Email,
		Roles:     convertCasdoorRoles(casdoorUser),
		CreatedAt: createdAt,
	}
	if casdoorUser.Avatar != "" {
		avatar := casdoorUser.Avatar
		user.AvatarURL = &avatar
	}

	return user
}

// convertCasdoorRoles maps Casdoor roles to the roles this service knows,
// dropping unknown ones and duplicates
func convertCasdoorRoles(casdoorUser *casdoorsdk.User) []models.UserRole {
	roles := make([]models.UserRole, 0, len(casdoorUser.Roles)+1)
	for _, casdoorRole := range casdoorUser.Roles {
		if casdoorRole == nil {
			continue
		}
		role, ok := mapCasdoorRole(casdoorRole.Name)
		if ok && !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}

	if casdoorUser.IsAdmin && !slices.Contains(roles, models.RoleAdmin) {
		roles = append(roles, models.RoleAdmin)
	}

	return roles
}

func mapCasdoorRole(name string) (models.UserRole, bool) {
	switch strings.ToLower(name) {
	case "student":
		return models.RoleStudent, true
	case "teacher", "instructor":
		return models.RoleTeacher, true
	case "admin", "administrator":
		return models.RoleAdmin, true
	default:
		return "", false
	}
}

// ===== READ OPERATIONS =====

// GetByID retrieves a user by ID, going to Casdoor only on a cache miss
func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	var cached models.User
	if err := u.cache.Get(ctx, idKey(id), &cached); err == nil {
		return &cached, nil
	}

	user, err := u.fetch(id)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Set(ctx, idKey(id), user, u.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache user", "user_id", id, "error", err)
	}

	return user, nil
}

func (u *UserCasdoor) fetch(id string) (*models.User, error) {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return convertCasdoorUserToModel(casdoorUser), nil
}

// GetByIDs resolves many users with one cache round trip and bounded
// parallel lookups for the misses. Users that cannot be resolved are
// skipped. Output order follows ids.
func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; id == "" || dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found := make(map[string]*models.User, len(unique))

	keys := make([]string, len(unique))
	for i, id := range unique {
		keys[i] = idKey(id)
	}
	if raw, err := u.cache.GetMultiple(ctx, keys); err == nil {
		for i, id := range unique {
			data, ok := raw[keys[i]]
			if !ok {
				continue
			}
			var user models.User
			if err := json.Unmarshal(data, &user); err == nil {
				found[id] = &user
			}
		}
	}

	missing := make([]string, 0)
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		var mu sync.Mutex
		fetched := make(map[string]interface{}, len(missing))

		var g errgroup.Group
		g.SetLimit(maxConcurrentLookups)
		for _, id := range missing {
			g.Go(func() error {
				user, err := u.fetch(id)
				if err != nil {
					slog.DebugContext(ctx, "Skipping unresolved user", "user_id", id, "error", err)
					return nil
				}
				mu.Lock()
				found[id] = user
				fetched[idKey(id)] = user
				mu.Unlock()
				return nil
			})
		}
		// lookups log and skip failures, so Wait never returns an error
		_ = g.Wait()

		if err := u.cache.SetMultiple(ctx, fetched, u.ttl); err != nil {
			slog.WarnContext(ctx, "Failed to cache users", "count", len(fetched), "error", err)
		}
	}

	users := make([]*models.User, 0, len(found))
	for _, id := range unique {
		if user, ok := found[id]; ok {
			users = append(users, user)
		}
	}

	return users, nil
}
