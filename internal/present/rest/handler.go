package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdeyev/shiftdesk/internal/domain"
	"github.com/avdeyev/shiftdesk/internal/present/rest/middleware"
	"github.com/avdeyev/shiftdesk/internal/present/rest/presenter"
	"github.com/avdeyev/shiftdesk/internal/service"
	"github.com/avdeyev/shiftdesk/internal/usecase"
)

type Handler struct {
	users    *usecase.UserUsecase
	articles *usecase.ArticleUsecase
	tasks    *usecase.TaskUsecase
	chats    *usecase.ChatUsecase
	auth     *service.AuthService
	storage  *service.StorageService
	signal   *service.SignalService

	tokenLifetime time.Duration
}

func NewHandler(
	users *usecase.UserUsecase,
	articles *usecase.ArticleUsecase,
	tasks *usecase.TaskUsecase,
	chats *usecase.ChatUsecase,
	auth *service.AuthService,
	storage *service.StorageService,
	signal *service.SignalService,
	tokenLifetime time.Duration,
) *Handler {
	return &Handler{
		users:         users,
		articles:      articles,
		tasks:         tasks,
		chats:         chats,
		auth:          auth,
		storage:       storage,
		signal:        signal,
		tokenLifetime: tokenLifetime,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.handleRegister)
	e.POST("/auth/login", h.handleLogin)
	e.POST("/auth/logout", h.handleLogout)

	e.GET("/user/profile", h.handleOwnProfile)
	e.PUT("/user/profile", h.handleUpdateProfile)
	e.GET("/user/search", h.handleSearchUsers)
	e.GET("/user/:id", h.handleGetUser)
	e.GET("/user/:id/history", h.handleUserHistory)

	e.GET("/admin/users", h.handleAdminUsers)
	e.PUT("/admin/users/:id", h.handleAdminUpdateUser)
	e.PUT("/admin/users/:id/password", h.handleAdminResetPassword)
	e.DELETE("/admin/users/:id", h.handleAdminDeleteUser)

	e.GET("/articles", h.handleListArticles)
	e.POST("/articles", h.handleCreateArticle)
	e.GET("/articles/:id", h.handleGetArticle)
	e.PUT("/articles/:id", h.handleUpdateArticle)
	e.DELETE("/articles/:id", h.handleDeleteArticle)
	e.POST("/articles/:id/restore", h.handleRestoreArticle)
	e.GET("/articles/:id/history", h.handleArticleHistory)

	e.GET("/tasks", h.handleListTasks)
	e.POST("/tasks", h.handleCreateTask)
	e.GET("/tasks/stats", h.handleTaskStats)
	e.GET("/tasks/:id", h.handleGetTask)
	e.PUT("/tasks/:id", h.handleUpdateTask)
	e.PATCH("/tasks/:id/status", h.handleTaskStatus)
	e.PATCH("/tasks/:id/assignee", h.handleTaskReassign)
	e.DELETE("/tasks/:id", h.handleDeleteTask)
	e.POST("/tasks/:id/restore", h.handleRestoreTask)
	e.GET("/tasks/:id/history", h.handleTaskHistory)

	e.POST("/chat", h.handleCreateChat)
	e.GET("/chat/list", h.handleListChats)
	e.POST("/chat/:id/invite", h.handleChatInvite)
	e.POST("/chat/:id/messages", h.handleSendMessage)
	e.GET("/chat/:id/messages", h.handleChatMessages)
	e.GET("/chat/:id/realtime", h.handleChatRealtime)

	e.Static("/uploads", h.storage.Dir())
}

// actor pulls the authenticated identity out of the request; handlers for
// protected routes bail out with 401 when it is missing.
func actor(c echo.Context) (domain.Actor, error) {
	a, ok := middleware.ActorFrom(c.Request().Context())
	if !ok {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return a, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError{Message: "invalid id"}
	}
	return id, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// --- auth ---

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Shift    string `json:"shift"`
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	user, err := h.users.Register(ctx, usecase.RegisterInput{
		Username:       req.Username,
		FullName:       req.FullName,
		Email:          req.Email,
		Shift:          req.Shift,
		HashedPassword: hash,
	})
	if err != nil {
		return presenter.Resolve(c, err)
	}

	token, err := h.auth.StartSession(ctx, user.ID)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	h.setAuthCookie(c, token)
	return presenter.Created(c, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	token, user, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	h.setAuthCookie(c, token)
	return presenter.OK(c, echo.Map{"token": token, "user": user})
}

func (h *Handler) handleLogout(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	if err := h.auth.Logout(c.Request().Context(), a.ID); err != nil {
		return presenter.Resolve(c, err)
	}

	c.SetCookie(&http.Cookie{Name: "access_token", Value: "", MaxAge: -1, Path: "/"})
	return presenter.OK(c, echo.Map{"message": "logged out"})
}

func (h *Handler) setAuthCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    token,
		MaxAge:   int(h.tokenLifetime / time.Second),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// --- users ---

func (h *Handler) handleOwnProfile(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	user, err := h.users.Get(c.Request().Context(), a.ID)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleUpdateProfile(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	patch, err := h.userPatchFromForm(c, false)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	user, err := h.users.Update(c.Request().Context(), a, a.ID, patch)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	h.auth.ForgetActor(a.ID)
	return presenter.OK(c, user)
}

func (h *Handler) handleSearchUsers(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}

	filter := domain.UserFilter{
		Username: c.QueryParam("username"),
		FullName: c.QueryParam("full_name"),
		Email:    c.QueryParam("email"),
		RoleID:   queryInt(c, "role_id", 0),
		Limit:    queryInt(c, "limit", 10),
	}

	users, err := h.users.Search(c.Request().Context(), filter)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, users)
}

func (h *Handler) handleGetUser(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleUserHistory(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	records, err := h.users.History(c.Request().Context(), a, id,
		queryInt(c, "offset", 0), queryInt(c, "limit", 10))
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, records)
}

// --- admin ---

func (h *Handler) handleAdminUsers(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	users, err := h.users.ListUsers(c.Request().Context(), a,
		queryInt(c, "role", 0), queryInt(c, "limit", 10))
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, users)
}

func (h *Handler) handleAdminUpdateUser(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	patch, err := h.userPatchFromForm(c, true)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	user, err := h.users.Update(c.Request().Context(), a, id, patch)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	h.auth.ForgetActor(id)
	return presenter.OK(c, user)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *Handler) handleAdminResetPassword(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	hash, err := h.auth.HashPassword(req.NewPassword)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	if err := h.users.ResetPassword(c.Request().Context(), a, id, hash); err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, echo.Map{"message": "password updated"})
}

func (h *Handler) handleAdminDeleteUser(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	if err := h.users.Delete(c.Request().Context(), a, id); err != nil {
		return presenter.Resolve(c, err)
	}
	h.auth.ForgetActor(id)
	return presenter.OK(c, echo.Map{"message": "user deleted"})
}

// userPatchFromForm reads the optional profile fields from a multipart
// form, storing an uploaded photo first. Shift changes are admin-only.
func (h *Handler) userPatchFromForm(c echo.Context, allowShift bool) (domain.UserPatch, error) {
	var patch domain.UserPatch

	if v := c.FormValue("username"); v != "" {
		patch.Username = &v
	}
	if v := c.FormValue("full_name"); v != "" {
		patch.FullName = &v
	}
	if v := c.FormValue("email"); v != "" {
		patch.Email = &v
	}
	if allowShift {
		if v := c.FormValue("shift"); v != "" {
			patch.Shift = &v
		}
	}

	if file, err := c.FormFile("photo"); err == nil {
		path, err := h.storage.Save(file, "avatar")
		if err != nil {
			return domain.UserPatch{}, err
		}
		patch.AvatarURL = &path
	}

	return patch, nil
}

// --- articles ---

func (h *Handler) handleListArticles(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}

	filter := domain.ArticleFilter{
		Title:    c.QueryParam("title"),
		AuthorID: int64(queryInt(c, "author_id", 0)),
		Offset:   queryInt(c, "offset", 0),
		Limit:    queryInt(c, "limit", 10),
	}

	articles, err := h.articles.List(c.Request().Context(), filter)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, articles)
}

func (h *Handler) handleCreateArticle(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	imagePaths, err := h.saveImages(c, "article")
	if err != nil {
		return presenter.Resolve(c, err)
	}

	article, err := h.articles.Create(c.Request().Context(), a,
		c.FormValue("title"), c.FormValue("content"), imagePaths)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.Created(c, article)
}

func (h *Handler) handleGetArticle(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	article, err := h.articles.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, article)
}

func (h *Handler) handleUpdateArticle(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var patch domain.ArticlePatch
	if v := c.FormValue("title"); v != "" {
		patch.Title = &v
	}
	if v := c.FormValue("content"); v != "" {
		patch.Content = &v
	}

	imagePaths, err := h.saveImages(c, "article")
	if err != nil {
		return presenter.Resolve(c, err)
	}

	article, err := h.articles.Update(c.Request().Context(), a, id, patch, imagePaths)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, article)
}

func (h *Handler) handleDeleteArticle(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	if err := h.articles.Delete(c.Request().Context(), a, id); err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, echo.Map{"message": "article deleted"})
}

func (h *Handler) handleRestoreArticle(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	article, err := h.articles.Restore(c.Request().Context(), a, id)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, article)
}

func (h *Handler) handleArticleHistory(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	records, err := h.articles.History(c.Request().Context(), a, id,
		queryInt(c, "offset", 0), queryInt(c, "limit", 10))
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, records)
}

// saveImages stores every "images" part of a multipart request. A missing
// form is fine; a bad file aborts the whole request before any DB write.
func (h *Handler) saveImages(c echo.Context, prefix string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var paths []string
	for _, file := range form.File["images"] {
		path, err := h.storage.Save(file, prefix)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// --- tasks ---

func (h *Handler) handleListTasks(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}

	filter := domain.TaskFilter{
		Title:      c.QueryParam("title"),
		AssigneeID: int64(queryInt(c, "assignee_id", 0)),
		Status:     domain.TaskStatus(c.QueryParam("status")),
		Priority:   domain.TaskPriority(c.QueryParam("priority")),
		Offset:     queryInt(c, "offset", 0),
		Limit:      queryInt(c, "limit", 10),
	}
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		return presenter.BadRequestMessage(c, "unknown status")
	}
	if filter.Priority != "" && !domain.ValidPriority(filter.Priority) {
		return presenter.BadRequestMessage(c, "unknown priority")
	}

	tasks, err := h.tasks.List(c.Request().Context(), filter)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, tasks)
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  int64      `json:"assignee_id"`
}

func (h *Handler) handleCreateTask(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	task, err := h.tasks.Create(c.Request().Context(), a, usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.Created(c, task)
}

func (h *Handler) handleGetTask(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	task, err := h.tasks.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, task)
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) handleUpdateTask(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		patch.Priority = &p
	}

	task, err := h.tasks.Update(c.Request().Context(), a, id, patch)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, task)
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleTaskStatus(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req taskStatusRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	task, err := h.tasks.ChangeStatus(c.Request().Context(), a, id, domain.TaskStatus(req.Status))
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, task)
}

type taskReassignRequest struct {
	AssigneeID int64 `json:"assignee_id"`
}

func (h *Handler) handleTaskReassign(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req taskReassignRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	task, err := h.tasks.Reassign(c.Request().Context(), a, id, req.AssigneeID)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, task)
}

func (h *Handler) handleDeleteTask(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	if err := h.tasks.Delete(c.Request().Context(), a, id); err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, echo.Map{"message": "task deleted"})
}

func (h *Handler) handleRestoreTask(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	task, err := h.tasks.Restore(c.Request().Context(), a, id)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, task)
}

func (h *Handler) handleTaskHistory(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	records, err := h.tasks.History(c.Request().Context(), id,
		queryInt(c, "offset", 0), queryInt(c, "limit", 10))
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, records)
}

func (h *Handler) handleTaskStats(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return presenter.Resolve(c, err)
	}

	stats, err := h.tasks.Stats(c.Request().Context())
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, stats)
}

// --- chat ---

type createChatRequest struct {
	Name      string  `json:"chat_name"`
	MemberIDs []int64 `json:"member_ids"`
}

func (h *Handler) handleCreateChat(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	chat, err := h.chats.Create(c.Request().Context(), a, req.Name, req.MemberIDs)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.Created(c, chat)
}

func (h *Handler) handleListChats(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	chats, err := h.chats.List(c.Request().Context(), a)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, chats)
}

type chatInviteRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *Handler) handleChatInvite(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req chatInviteRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.chats.Invite(c.Request().Context(), a, id, req.UserID); err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, echo.Map{"message": "user invited"})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleSendMessage(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	msg, err := h.chats.Send(c.Request().Context(), a, id, req.Content)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.Created(c, msg)
}

func (h *Handler) handleChatMessages(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	messages, err := h.chats.Messages(c.Request().Context(), a, id,
		queryInt(c, "offset", 0), queryInt(c, "limit", 50))
	if err != nil {
		return presenter.Resolve(c, err)
	}
	return presenter.OK(c, messages)
}
