package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/infra/config"
)

const defaultClientTimeout = 3 * time.Second

// Client queries an upstream admin directory over HTTP. Like LocalDirectory it
// is fail-open: transport errors and non-2xx responses log a warning and read
// as absent, so resolution degrades instead of erroring.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs a directory client for the configured base URL.
func NewClient(cfg config.DirectorySettings, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type unitPayload struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parentId"`
	Path     string  `json:"path"`
}

type userPayload struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	DisplayName       string  `json:"displayName"`
	Email             *string `json:"email"`
	BusinessUnitID    *string `json:"businessUnitId"`
	FunctionManagerID *string `json:"functionManagerId"`
	EntityManagerID   *string `json:"entityManagerId"`
	Status            string  `json:"status"`
}

// Parent returns the parent unit id, or false for root and unknown units.
func (c *Client) Parent(ctx context.Context, unitID string) (string, bool) {
	var payload struct {
		ParentBusinessUnitID *string `json:"parentBusinessUnitId"`
	}
	path := fmt.Sprintf("/api/v1/admin/task-assignment/business-units/%s/parent", url.PathEscape(unitID))
	if !c.getJSON(ctx, path, &payload) {
		return "", false
	}

	if payload.ParentBusinessUnitID == nil || *payload.ParentBusinessUnitID == "" {
		return "", false
	}

	return *payload.ParentBusinessUnitID, true
}

// PathOf returns the unit's materialized path.
func (c *Client) PathOf(ctx context.Context, unitID string) (string, bool) {
	var payload unitPayload
	path := fmt.Sprintf("/api/v1/admin/business-units/%s", url.PathEscape(unitID))
	if !c.getJSON(ctx, path, &payload) {
		return "", false
	}

	if payload.Path == "" {
		return "", false
	}

	return payload.Path, true
}

// HomeUnitOf returns the user's home unit id, or false when the user has none.
func (c *Client) HomeUnitOf(ctx context.Context, userID string) (string, bool) {
	var payload struct {
		BusinessUnitID *string `json:"businessUnitId"`
	}
	path := fmt.Sprintf("/api/v1/admin/task-assignment/users/%s/business-unit", url.PathEscape(userID))
	if !c.getJSON(ctx, path, &payload) {
		return "", false
	}

	if payload.BusinessUnitID == nil || *payload.BusinessUnitID == "" {
		return "", false
	}

	return *payload.BusinessUnitID, true
}

// UsersWithRoleInUnit returns the ids of role holders within the unit.
func (c *Client) UsersWithRoleInUnit(ctx context.Context, unitID, roleID string) []string {
	var userIDs []string
	path := fmt.Sprintf("/api/v1/admin/task-assignment/business-units/%s/roles/%s/users",
		url.PathEscape(unitID), url.PathEscape(roleID))
	if !c.getJSON(ctx, path, &userIDs) {
		return nil
	}

	return userIDs
}

// UsersWithUnboundedRole returns the ids of virtual-group role holders.
func (c *Client) UsersWithUnboundedRole(ctx context.Context, roleID string) []string {
	var userIDs []string
	path := fmt.Sprintf("/api/v1/admin/task-assignment/roles/%s/users", url.PathEscape(roleID))
	if !c.getJSON(ctx, path, &userIDs) {
		return nil
	}

	return userIDs
}

// IsEligibleRole reports whether the role has been admitted for the unit.
func (c *Client) IsEligibleRole(ctx context.Context, unitID, roleID string) bool {
	var payload struct {
		Eligible bool `json:"eligible"`
	}
	path := fmt.Sprintf("/api/v1/admin/task-assignment/business-units/%s/roles/%s/eligible",
		url.PathEscape(unitID), url.PathEscape(roleID))
	if !c.getJSON(ctx, path, &payload) {
		return false
	}

	return payload.Eligible
}

// Lookup resolves a user profile. Missing users read as not found.
func (c *Client) Lookup(ctx context.Context, userID string) (domain.User, bool) {
	var payload userPayload
	path := fmt.Sprintf("/api/v1/admin/users/%s", url.PathEscape(userID))
	if !c.getJSON(ctx, path, &payload) {
		return domain.User{}, false
	}

	status := domain.UserStatus(payload.Status)
	if payload.Status == "" {
		status = domain.UserStatusActive
	}

	return domain.User{
		ID:                payload.ID,
		Username:          payload.Username,
		DisplayName:       payload.DisplayName,
		Email:             payload.Email,
		HomeUnitID:        payload.BusinessUnitID,
		FunctionManagerID: payload.FunctionManagerID,
		EntityManagerID:   payload.EntityManagerID,
		Status:            status,
	}, true
}

// getJSON performs a GET and decodes the body. It reports false for transport
// failures, non-2xx statuses, and undecodable bodies.
func (c *Client) getJSON(ctx context.Context, path string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.warn(path, err)
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.warn(path, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.warn(path, fmt.Errorf("unexpected status %d", resp.StatusCode))
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.warn(path, err)
		return false
	}

	return true
}

func (c *Client) warn(path string, err error) {
	c.logger.Warn("directory request failed",
		zap.String("path", path),
		zap.Error(err),
	)
}

var (
	_ port.HierarchyNavigator  = (*Client)(nil)
	_ port.RoleMembershipIndex = (*Client)(nil)
	_ port.UserDirectory       = (*Client)(nil)
)
