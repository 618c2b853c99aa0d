// Package app wires the repositories and domain services behind one
// application state object and exposes them over HTTP. No globals: every
// dependency is injected through Options.
package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"campusmate/api/internal/account"
	"campusmate/api/internal/assistant"
	"campusmate/api/internal/auth"
	"campusmate/api/internal/files"
	"campusmate/api/internal/kv"
	"campusmate/api/internal/rbac"
	"campusmate/api/internal/search"
	"campusmate/api/internal/session"
	"campusmate/api/internal/snapshot"
	"campusmate/api/internal/store"
	"campusmate/api/internal/visibility"
)

type Options struct {
	KV          *kv.Store
	JWTSecret   []byte
	AccessTTL   time.Duration
	AppVersion  string
	EmailDomain string
	Search    *search.Service
	Files     *files.Storage     // nil keeps file bodies inline
	Assistant *assistant.Service // nil disables /api/ai
}

type Service struct {
	kv            *kv.Store
	users         *store.Users
	tasks         *store.Tasks
	complaints    *store.Complaints
	permissions   *store.Permissions
	feedback      *store.FeedbackRepo
	events        *store.Events
	registrations *store.RegistrationsRepo
	reactions     *store.ReactionsRepo

	sessions  *session.Manager
	accounts  *account.Service
	snapshots *snapshot.Service
	search    *search.Service
	files     *files.Storage
	assistant *assistant.Service

	jwtSecret []byte
	accessTTL time.Duration
}

func NewService(opts Options) *Service {
	users := store.NewUsers(opts.KV)
	tasks := store.NewTasks(opts.KV)
	sessions := session.NewManager(opts.KV)

	return &Service{
		kv:            opts.KV,
		users:         users,
		tasks:         tasks,
		complaints:    store.NewComplaints(opts.KV),
		permissions:   store.NewPermissions(opts.KV),
		feedback:      store.NewFeedback(opts.KV),
		events:        store.NewEvents(opts.KV),
		registrations: store.NewRegistrations(opts.KV),
		reactions:     store.NewReactions(opts.KV),

		sessions:  sessions,
		accounts:  account.NewService(users, opts.EmailDomain),
		snapshots: snapshot.NewService(users, tasks, sessions, opts.AppVersion),
		search:    opts.Search,
		files:     opts.Files,
		assistant: opts.Assistant,

		jwtSecret: opts.JWTSecret,
		accessTTL: opts.AccessTTL,
	}
}

// Ping reports storage reachability for the readiness probe.
func (s *Service) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// PublicUser is a user with the password stripped, the only user shape
// that leaves the API.
type PublicUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	USN      string `json:"usn"`
	Email    string `json:"email"`
}

func publicUser(u store.User) PublicUser {
	return PublicUser{Username: u.Username, Role: u.Role, Name: u.Name, USN: u.USN, Email: u.Email}
}

// ── Auth and session ──

func (s *Service) Register(ctx context.Context, req account.RegisterRequest) (PublicUser, error) {
	user, err := s.accounts.Register(ctx, req)
	if err != nil {
		return PublicUser{}, mapAccountError(err)
	}
	return publicUser(user), nil
}

// Login verifies credentials, persists the session record, and issues a
// bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (PublicUser, string, error) {
	user, err := s.accounts.Login(ctx, username, password)
	if err != nil {
		return PublicUser{}, "", mapAccountError(err)
	}
	if err := s.sessions.Set(ctx, user); err != nil {
		return PublicUser{}, "", domainError(http.StatusInternalServerError, "SERVER_ERROR", "Could not persist session", nil)
	}
	token, err := auth.IssueToken(s.jwtSecret, auth.Claims{Username: user.Username, Role: user.Role}, s.accessTTL)
	if err != nil {
		return PublicUser{}, "", domainError(http.StatusInternalServerError, "SERVER_ERROR", "Could not issue token", nil)
	}
	return publicUser(user), token, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentSession returns the persisted session user, or nil when logged out.
func (s *Service) CurrentSession(ctx context.Context) *PublicUser {
	user := s.sessions.Get(ctx)
	if user == nil {
		return nil
	}
	pub := publicUser(*user)
	return &pub
}

// ViewerFromToken resolves a bearer token to a fresh account record, so a
// role change takes effect without reissuing the token.
func (s *Service) ViewerFromToken(ctx context.Context, token string) (store.User, error) {
	claims, err := auth.ParseToken(s.jwtSecret, token)
	if err != nil {
		return store.User{}, err
	}
	user, ok := s.users.GetByUsername(ctx, claims.Username)
	if !ok {
		return store.User{}, auth.ErrInvalidToken
	}
	return user, nil
}

// ── Tasks ──

func (s *Service) ListTasks(ctx context.Context, viewer store.User, q visibility.TaskQuery) []store.Task {
	all := s.tasks.ListAll(ctx)
	admins := visibility.AdminOwners(s.users.List(ctx))
	return visibility.VisibleTasks(all, viewer, admins, q)
}

// CreateTask stores a task owned by the viewer. Admins may assign another
// owner; everyone else always creates for themselves.
func (s *Service) CreateTask(ctx context.Context, viewer store.User, task store.Task) (store.Task, error) {
	if !rbac.Can(rbac.Normalize(viewer.Role), rbac.ActionWrite) {
		return store.Task{}, errForbidden()
	}
	if task.Owner == "" || rbac.Normalize(viewer.Role) != rbac.RoleAdmin {
		task.Owner = viewer.Username
	}
	if rbac.Normalize(viewer.Role) != rbac.RoleAdmin {
		task.Visibility = store.VisibilityPublic
	}
	task.ID = ""
	saved, err := s.tasks.Append(ctx, task)
	if err != nil {
		return store.Task{}, err
	}
	if s.search != nil {
		s.search.IndexTask(saved)
	}
	return saved, nil
}

func (s *Service) UpdateTask(ctx context.Context, viewer store.User, id string, updated store.Task) (store.Task, error) {
	existing, ok := s.tasks.GetByID(ctx, id)
	if !ok {
		return store.Task{}, errNotFound("Task not found")
	}
	if !visibility.CanEditTask(existing, viewer) {
		return store.Task{}, errForbidden()
	}
	if rbac.Normalize(viewer.Role) != rbac.RoleAdmin {
		updated.Visibility = existing.Visibility
	}
	updated.Owner = existing.Owner
	updated.CreatedAt = existing.CreatedAt
	if _, err := s.tasks.UpdateByID(ctx, existing.Owner, id, updated); err != nil {
		return store.Task{}, err
	}
	saved, _ := s.tasks.GetByID(ctx, id)
	if s.search != nil {
		s.search.IndexTask(saved)
	}
	return saved, nil
}

func (s *Service) DeleteTask(ctx context.Context, viewer store.User, id string) error {
	existing, ok := s.tasks.GetByID(ctx, id)
	if !ok {
		return errNotFound("Task not found")
	}
	if !visibility.CanEditTask(existing, viewer) {
		return errForbidden()
	}
	if _, err := s.tasks.DeleteByID(ctx, existing.Owner, id); err != nil {
		return err
	}
	if s.search != nil {
		s.search.RemoveTask(id)
	}
	return nil
}

// ── Events ──

// EventView decorates an event with the viewer's registration state.
type EventView struct {
	store.Event
	Registrations int  `json:"registrations"`
	Registered    bool `json:"registered"`
}

func (s *Service) ListEvents(ctx context.Context, viewer store.User) []EventView {
	events := visibility.VisibleEvents(s.events.List(ctx), viewer)
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			Event:         e,
			Registrations: len(s.registrations.ListForEvent(ctx, e.ID)),
			Registered:    s.registrations.IsRegistered(ctx, e.ID, viewer.Username),
		})
	}
	return views
}

func (s *Service) CreateEvent(ctx context.Context, viewer store.User, event store.Event) (store.Event, error) {
	if !rbac.Can(rbac.Normalize(viewer.Role), rbac.ActionModerate) {
		return store.Event{}, errForbidden()
	}
	event.ID = ""
	event.CreatedBy = viewer.Username
	if rbac.Normalize(viewer.Role) != rbac.RoleAdmin {
		event.Visibility = store.VisibilityPublic
	}
	saved, err := s.events.Add(ctx, event)
	if err != nil {
		return store.Event{}, err
	}
	if s.search != nil {
		s.search.IndexEvent(saved)
	}
	return saved, nil
}

func (s *Service) UpdateEvent(ctx context.Context, viewer store.User, id string, updated store.Event) (store.Event, error) {
	existing, ok := s.events.GetByID(ctx, id)
	if !ok {
		return store.Event{}, errNotFound("Event not found")
	}
	if !visibility.CanEditEvent(existing, viewer) {
		return store.Event{}, errForbidden()
	}
	updated.CreatedBy = existing.CreatedBy
	if rbac.Normalize(viewer.Role) != rbac.RoleAdmin {
		updated.Visibility = existing.Visibility
	}
	if _, err := s.events.UpdateByID(ctx, id, updated); err != nil {
		return store.Event{}, err
	}
	saved, _ := s.events.GetByID(ctx, id)
	if s.search != nil {
		s.search.IndexEvent(saved)
	}
	return saved, nil
}

func (s *Service) DeleteEvent(ctx context.Context, viewer store.User, id string) error {
	existing, ok := s.events.GetByID(ctx, id)
	if !ok {
		return errNotFound("Event not found")
	}
	if !visibility.CanEditEvent(existing, viewer) {
		return errForbidden()
	}
	if _, err := s.events.DeleteByID(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		s.search.RemoveEvent(id)
	}
	return nil
}

// RegisterForEvent is idempotent: registering twice reports the same state.
func (s *Service) RegisterForEvent(ctx context.Context, viewer store.User, eventID string) (int, error) {
	event, ok := s.events.GetByID(ctx, eventID)
	if !ok {
		return 0, errNotFound("Event not found")
	}
	if event.Visibility == store.VisibilityAdmin && rbac.Normalize(viewer.Role) != rbac.RoleAdmin {
		return 0, errForbidden()
	}
	if err := s.registrations.Register(ctx, eventID, viewer.Username); err != nil {
		return 0, err
	}
	return len(s.registrations.ListForEvent(ctx, eventID)), nil
}

// ── Complaints ──

// ComplaintView decorates a complaint with its reaction tallies and the
// viewer's own reaction.
type ComplaintView struct {
	store.Complaint
	Likes      int    `json:"likes"`
	Dislikes   int    `json:"dislikes"`
	MyReaction string `json:"myReaction,omitempty"`
}

func (s *Service) ListComplaints(ctx context.Context, viewer store.User) []ComplaintView {
	complaints := visibility.VisibleComplaints(s.complaints.List(ctx), viewer)
	views := make([]ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		likes, dislikes := s.reactions.Counts(ctx, c.ID)
		views = append(views, ComplaintView{
			Complaint:  c,
			Likes:      likes,
			Dislikes:   dislikes,
			MyReaction: s.reactions.Get(ctx, c.ID, viewer.Username),
		})
	}
	return views
}

func (s *Service) CreateComplaint(ctx context.Context, viewer store.User, complaint store.Complaint) (store.Complaint, error) {
	complaint.ID = ""
	complaint.Owner = viewer.Username
	complaint.Status = store.ComplaintPending
	return s.complaints.Add(ctx, complaint)
}

// UpdateComplaintStatus is the admin moderation path; the body of the
// complaint stays untouched.
func (s *Service) UpdateComplaintStatus(ctx context.Context, viewer store.User, id, status string) (store.Complaint, error) {
	if !rbac.Can(rbac.Normalize(viewer.Role), rbac.ActionAdmin) {
		return store.Complaint{}, errForbidden()
	}
	existing, ok := s.complaints.GetByID(ctx, id)
	if !ok {
		return store.Complaint{}, errNotFound("Complaint not found")
	}
	existing.Status = status
	if _, err := s.complaints.UpdateByID(ctx, id, existing); err != nil {
		return store.Complaint{}, err
	}
	saved, _ := s.complaints.GetByID(ctx, id)
	return saved, nil
}

// ReactToComplaint records like/dislike; any other value clears the
// viewer's reaction.
func (s *Service) ReactToComplaint(ctx context.Context, viewer store.User, id, reaction string) (ComplaintView, error) {
	complaint, ok := s.complaints.GetByID(ctx, id)
	if !ok {
		return ComplaintView{}, errNotFound("Complaint not found")
	}
	if rbac.Normalize(viewer.Role) != rbac.RoleAdmin && !strings.EqualFold(complaint.Owner, viewer.Username) {
		return ComplaintView{}, errForbidden()
	}
	if err := s.reactions.Set(ctx, id, viewer.Username, reaction); err != nil {
		return ComplaintView{}, err
	}
	likes, dislikes := s.reactions.Counts(ctx, id)
	return ComplaintView{
		Complaint:  complaint,
		Likes:      likes,
		Dislikes:   dislikes,
		MyReaction: s.reactions.Get(ctx, id, viewer.Username),
	}, nil
}

// ── Feedback ──

func (s *Service) ListFeedback(ctx context.Context, viewer store.User) []store.Feedback {
	return visibility.VisibleFeedback(s.feedback.List(ctx), viewer)
}

func (s *Service) CreateFeedback(ctx context.Context, viewer store.User, entry store.Feedback) (store.Feedback, error) {
	entry.ID = ""
	entry.Owner = viewer.Username
	return s.feedback.Add(ctx, entry)
}

// ── Permissions ──

func (s *Service) ListPermissions(ctx context.Context, viewer store.User) []store.Permission {
	permissions := s.permissions.List(ctx)
	for i := range permissions {
		permissions[i] = files.Rehydrate(ctx, s.files, permissions[i])
	}
	return permissions
}

func (s *Service) CreatePermission(ctx context.Context, viewer store.User, permission store.Permission) (store.Permission, error) {
	if strings.TrimSpace(permission.Filename) == "" || permission.FileData == "" {
		return store.Permission{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "filename and fileData are required", nil)
	}
	permission.ID = ""
	permission.ObjectKey = ""
	permission.UploadedBy = viewer.Username
	saved, err := s.permissions.Add(ctx, permission)
	if err != nil {
		return store.Permission{}, err
	}
	offloaded := files.Offload(ctx, s.files, saved)
	if offloaded.ObjectKey != "" {
		// Persist the offloaded record so the inline body is actually freed.
		if ok, err := s.replacePermission(ctx, offloaded); err != nil || !ok {
			offloaded = saved
		}
	}
	return files.Rehydrate(ctx, s.files, offloaded), nil
}

func (s *Service) DeletePermission(ctx context.Context, viewer store.User, id string) error {
	existing, ok := s.permissions.GetByID(ctx, id)
	if !ok {
		return errNotFound("Permission not found")
	}
	if rbac.Normalize(viewer.Role) != rbac.RoleAdmin && !strings.EqualFold(existing.UploadedBy, viewer.Username) {
		return errForbidden()
	}
	if _, err := s.permissions.DeleteByID(ctx, id); err != nil {
		return err
	}
	if s.files != nil && existing.ObjectKey != "" {
		_ = s.files.Remove(ctx, existing.ObjectKey)
	}
	return nil
}

func (s *Service) replacePermission(ctx context.Context, updated store.Permission) (bool, error) {
	if ok, err := s.permissions.DeleteByID(ctx, updated.ID); err != nil || !ok {
		return ok, err
	}
	_, err := s.permissions.Add(ctx, updated)
	return err == nil, err
}

// ── Snapshot ──

func (s *Service) Export(ctx context.Context, viewer store.User) (snapshot.Document, error) {
	if !rbac.Can(rbac.Normalize(viewer.Role), rbac.ActionAdmin) {
		return snapshot.Document{}, errForbidden()
	}
	return s.snapshots.Export(ctx), nil
}

func (s *Service) Import(ctx context.Context, viewer store.User, payload []byte, mode string) error {
	if !rbac.Can(rbac.Normalize(viewer.Role), rbac.ActionAdmin) {
		return errForbidden()
	}
	return s.snapshots.Import(ctx, payload, mode)
}

// ── Assistant ──

// Ask builds the viewer's role-filtered data snapshot and forwards the
// question to the assistant.
func (s *Service) Ask(ctx context.Context, viewer store.User, message string) (string, error) {
	if s.assistant == nil {
		return "", domainError(http.StatusServiceUnavailable, "AI_UNAVAILABLE", "Assistant is not configured", nil)
	}
	admins := visibility.AdminOwners(s.users.List(ctx))
	snap := assistant.BuildContext(
		viewer,
		visibility.VisibleTasks(s.tasks.ListAll(ctx), viewer, admins, visibility.TaskQuery{}),
		visibility.VisibleEvents(s.events.List(ctx), viewer),
		visibility.VisibleComplaints(s.complaints.List(ctx), viewer),
		s.permissions.List(ctx),
		visibility.VisibleFeedback(s.feedback.List(ctx), viewer),
	)
	return s.assistant.Chat(ctx, message, snap)
}

// ── Search ──

func (s *Service) Search(ctx context.Context, viewer store.User, q string) []search.Result {
	if s.search == nil {
		return []search.Result{}
	}
	admins := visibility.AdminOwners(s.users.List(ctx))
	tasks := visibility.VisibleTasks(s.tasks.ListAll(ctx), viewer, admins, visibility.TaskQuery{})
	events := visibility.VisibleEvents(s.events.List(ctx), viewer)
	return s.search.Search(q, tasks, events)
}

// ── Error helpers ──

func errForbidden() *DomainError {
	return domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
}

func errNotFound(message string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", message, nil)
}

func mapAccountError(err error) error {
	switch err {
	case account.ErrMissingFields, account.ErrInvalidUSN, account.ErrInvalidEmail, account.ErrWeakPassword:
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	case account.ErrInvalidCredentials:
		return domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	case store.ErrDuplicateUsername, store.ErrDuplicateUSN:
		return domainError(http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
	}
	return err
}
