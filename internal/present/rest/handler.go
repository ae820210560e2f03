package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/forcize/hylo-node"
	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/present/rest/middleware"
	"github.com/forcize/hylo-node/internal/present/rest/presenter"
	"github.com/forcize/hylo-node/internal/usecase"
)

// RealtimeSource relays events for the session's subscribed channels to
// output until the context ends.
type RealtimeSource interface {
	Realtime(ctx context.Context, request <-chan []string, output chan<- hylo.Event)
}

type Handler struct {
	group      *usecase.GroupUsecase
	membership *usecase.MembershipUsecase
	post       *usecase.PostUsecase
	user       *usecase.UserUsecase
	visibility *usecase.VisibilityUsecase
	signal     RealtimeSource
}

func NewHandler(
	group *usecase.GroupUsecase,
	membership *usecase.MembershipUsecase,
	post *usecase.PostUsecase,
	user *usecase.UserUsecase,
	visibility *usecase.VisibilityUsecase,
	signal RealtimeSource,
) *Handler {
	return &Handler{
		group:      group,
		membership: membership,
		post:       post,
		user:       user,
		visibility: visibility,
		signal:     signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/groups/:kind/:id", h.handleGroup)
	e.DELETE("/api/v1/groups/:kind/:id", h.handleDeactivate)
	e.GET("/api/v1/groups/:kind/:id/members", h.handleMembers)
	e.POST("/api/v1/groups/:kind/:id/members", h.handleAddMembers)
	e.PATCH("/api/v1/groups/:kind/:id/members", h.handleUpdateMembers)
	e.DELETE("/api/v1/groups/:kind/:id/members", h.handleRemoveMembers)
	e.POST("/api/v1/groups/connect", h.handleConnect)
	e.GET("/api/v1/groups/exact-members", h.handleExactMembers)
	e.GET("/api/v1/groups/same-group", h.handleSameGroup)
	e.GET("/api/v1/groups/all-have-member", h.handleAllHaveMember)
	e.GET("/api/v1/people", h.handlePeople)
	e.POST("/api/v1/posts", h.handleCreatePost)
	e.GET("/api/v1/posts", h.handlePosts)
	e.GET("/api/v1/posts/:id/visible", h.handlePostVisible)
	e.GET("/api/v1/comments", h.handleComments)
	e.GET("/api/v1/memberships", h.handleMemberships)
	e.POST("/api/v1/blocks/:userId", h.handleBlock)
	e.DELETE("/api/v1/blocks/:userId", h.handleUnblock)
	e.POST("/api/v1/connections/:userId", h.handleConnectUser)
	e.POST("/api/v1/posts/:id/followers", h.handleFollowPost)
	e.DELETE("/api/v1/posts/:id/followers", h.handleUnfollowPost)
	e.GET("/api/v1/posts/:id/followers", h.handlePostFollowers)
	e.GET("/realtime", h.handleRealtime)
}

func groupTarget(c echo.Context) (domain.DataType, int64, error) {
	t, err := domain.ParseDataType(c.Param("kind"))
	if err != nil {
		return 0, 0, err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid group data id")
	}
	return t, id, nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) handleGroup(c echo.Context) error {
	ctx := c.Request().Context()

	t, id, err := groupTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	group, err := h.group.Find(ctx, t, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "group not found")
		}
		return presenter.InternalError(c, err)
	}

	entity, err := h.group.Data(ctx, group)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "group entity not found")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{"group": group, "data": entity})
}

func (h *Handler) handleDeactivate(c echo.Context) error {
	ctx := c.Request().Context()

	t, id, err := groupTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.membership.Deactivate(ctx, t, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "group not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleMembers(c echo.Context) error {
	ctx := c.Request().Context()

	t, id, err := groupTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	includeInactive := c.QueryParam("includeInactive") == "true"
	members, err := h.membership.MembersOf(ctx, t, id, includeInactive)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "group not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, members)
}

type memberMutationRequest struct {
	UserIDs []int64        `json:"userIds"`
	Attrs   map[string]any `json:"attrs"`
}

func (h *Handler) handleAddMembers(c echo.Context) error {
	ctx := c.Request().Context()

	t, id, err := groupTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req memberMutationRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.membership.AddMembers(ctx, t, id, req.UserIDs, domain.MembershipAttrsFromMap(req.Attrs))
	if err != nil {
		return h.mutationError(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleUpdateMembers(c echo.Context) error {
	ctx := c.Request().Context()

	t, id, err := groupTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req memberMutationRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.membership.UpdateMembers(ctx, t, id, req.UserIDs, domain.MembershipAttrsFromMap(req.Attrs))
	if err != nil {
		return h.mutationError(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleRemoveMembers(c echo.Context) error {
	ctx := c.Request().Context()

	t, id, err := groupTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req memberMutationRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.membership.RemoveMembers(ctx, t, id, req.UserIDs)
	if err != nil {
		return h.mutationError(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) mutationError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return presenter.NotFound(c, "group not found")
	}
	if errors.Is(err, domain.ConflictError{}) {
		return presenter.Conflict(c, err)
	}
	return presenter.InternalError(c, err)
}

type connectRequest struct {
	ParentGroupID int64 `json:"parentGroupId"`
	ChildGroupID  int64 `json:"childGroupId"`
}

func (h *Handler) handleConnect(c echo.Context) error {
	ctx := c.Request().Context()

	var req connectRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.ParentGroupID == 0 || req.ChildGroupID == 0 {
		return presenter.BadRequestMessage(c, "parentGroupId and childGroupId are required")
	}

	if err := h.group.Connect(ctx, req.ParentGroupID, req.ChildGroupID); err != nil {
		return presenter.BadRequest(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleExactMembers(c echo.Context) error {
	ctx := c.Request().Context()

	t, err := domain.ParseDataType(c.QueryParam("kind"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	userIDs, err := parseIDList(c.QueryParam("userIds"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if len(userIDs) == 0 {
		return presenter.BadRequestMessage(c, "userIds parameter is required")
	}

	groups, err := h.group.WithExactMembers(ctx, userIDs, t)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, groups)
}

func (h *Handler) handleSameGroup(c echo.Context) error {
	ctx := c.Request().Context()

	t, err := domain.ParseDataType(c.QueryParam("kind"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	userIDs, err := parseIDList(c.QueryParam("userIds"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	same, err := h.group.InSameGroup(ctx, userIDs, t)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"inSameGroup": same})
}

func (h *Handler) handleAllHaveMember(c echo.Context) error {
	ctx := c.Request().Context()

	t, err := domain.ParseDataType(c.QueryParam("kind"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	userID, err := strconv.ParseInt(c.QueryParam("userId"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid userId parameter")
	}
	groupDataIDs, err := parseIDList(c.QueryParam("groupDataIds"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	all, err := h.group.AllHaveMember(ctx, groupDataIDs, userID, t)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"allHaveMember": all})
}

// viewer resolves the acting user for filtered reads. Anonymous
// requests are rejected; the filter engine has no meaning without a
// viewer.
func viewer(c echo.Context) (int64, bool) {
	return middleware.ViewerID(c.Request().Context())
}

func filtered(c echo.Context) bool {
	return c.QueryParam("unfiltered") != "true"
}

func (h *Handler) handlePeople(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}

	people, err := h.visibility.ListPeople(ctx, viewerID, filtered(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, people)
}

type createPostRequest struct {
	UserID       int64   `json:"userId"`
	ParentPostID *int64  `json:"parentPostId"`
	Visibility   int     `json:"visibility"`
	CommunityIDs []int64 `json:"communityIds"`
}

func (h *Handler) handleCreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.UserID == 0 {
		return presenter.BadRequestMessage(c, "userId is required")
	}

	post, err := h.post.Create(ctx, domain.Post{
		UserID:       req.UserID,
		ParentPostID: req.ParentPostID,
		Visibility:   req.Visibility,
	}, req.CommunityIDs)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, post)
}

func (h *Handler) handlePosts(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}

	posts, err := h.visibility.ListPosts(ctx, viewerID, filtered(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, posts)
}

func (h *Handler) handlePostVisible(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post id")
	}

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}

	visible, err := h.post.IsVisibleToUser(ctx, postID, viewerID)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"visible": visible})
}

func (h *Handler) handleComments(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}

	comments, err := h.visibility.ListComments(ctx, viewerID, filtered(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, comments)
}

func (h *Handler) handleMemberships(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}

	memberships, err := h.visibility.ListMemberships(ctx, viewerID, filtered(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, memberships)
}

// otherUser resolves the :userId route param naming the other side of
// a social edge.
func otherUser(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId")
	}
	return id, nil
}

func (h *Handler) handleBlock(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}
	blockedID, err := otherUser(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.user.Block(ctx, viewerID, blockedID); err != nil {
		if errors.Is(err, domain.ErrSelfReference) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleUnblock(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}
	blockedID, err := otherUser(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.user.Unblock(ctx, viewerID, blockedID); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type connectUserRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handleConnectUser(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}
	otherID, err := otherUser(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req connectUserRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	connType := req.Type
	if connType == "" {
		connType = domain.ConnectionMessage
	}

	if err := h.user.Connect(ctx, viewerID, otherID, connType); err != nil {
		if errors.Is(err, domain.ErrSelfReference) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func postParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id")
	}
	return id, nil
}

func (h *Handler) handleFollowPost(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}
	postID, err := postParam(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.user.FollowPost(ctx, viewerID, postID, nil); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleUnfollowPost(c echo.Context) error {
	ctx := c.Request().Context()

	viewerID, ok := viewer(c)
	if !ok {
		return presenter.BadRequestMessage(c, "viewer identification is required")
	}
	postID, err := postParam(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.user.UnfollowPost(ctx, viewerID, postID); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handlePostFollowers(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := postParam(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	followers, err := h.user.PostFollowers(ctx, postID)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, followers)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// Shutdown is signalled by cancelling the session context, never by
	// closing the channels: the reader goroutine and the relay may still
	// hold pending sends when the session ends.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan hylo.Event)

	go h.signal.Realtime(ctx, input, output)

	go func() {
		defer cancel()
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Channels:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Channels),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
