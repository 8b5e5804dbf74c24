package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	notificationstore "github.com/dalemusser/showmate/internal/app/store/notifications"
	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/google/uuid"
)

// In-memory stand-ins for the Mongo stores. They follow the same contracts
// (nil for absent records, idempotent deletes, newest-first notifications)
// and let a test force a failure per method through Fail.

// ErrInjected is the error returned by a method listed in a fake's Fail map
// with a nil value.
var ErrInjected = errors.New("injected failure")

type failures struct {
	mu   sync.Mutex
	Fail map[string]error
}

func (f *failures) failOn(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.Fail[method]
	if !ok {
		return nil
	}
	if err == nil {
		return ErrInjected
	}
	return err
}

// FailWith makes method return err (ErrInjected when err is nil).
func (f *failures) FailWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail == nil {
		f.Fail = map[string]error{}
	}
	f.Fail[method] = err
}

/* -------------------------------------------------------------------------- */

// MemMemberships is an in-memory membershipstore.
type MemMemberships struct {
	failures
	mu    sync.Mutex
	items []models.ProjectMembership
}

func NewMemMemberships() *MemMemberships { return &MemMemberships{} }

// latest returns the index of the most recent record for the pair, or -1.
func (s *MemMemberships) latest(projectID, userID string) int {
	idx := -1
	for i, m := range s.items {
		if m.ProjectID != projectID || m.UserID != userID {
			continue
		}
		if idx == -1 || !m.JoinedAt.Before(s.items[idx].JoinedAt) {
			idx = i
		}
	}
	return idx
}

func (s *MemMemberships) FindByProjectAndUser(_ context.Context, projectID, userID string) (*models.ProjectMembership, error) {
	if err := s.failOn("FindByProjectAndUser"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.latest(projectID, userID); i >= 0 {
		m := s.items[i]
		return &m, nil
	}
	return nil, nil
}

func (s *MemMemberships) FindByID(_ context.Context, id string) (*models.ProjectMembership, error) {
	if err := s.failOn("FindByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.items {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MemMemberships) filter(keep func(models.ProjectMembership) bool) []models.ProjectMembership {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ProjectMembership{}
	for _, m := range s.items {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (s *MemMemberships) FindProjectMembers(_ context.Context, projectID string) ([]models.ProjectMembership, error) {
	if err := s.failOn("FindProjectMembers"); err != nil {
		return nil, err
	}
	return s.filter(func(m models.ProjectMembership) bool { return m.ProjectID == projectID }), nil
}

func (s *MemMemberships) FindUserMemberships(_ context.Context, userID string) ([]models.ProjectMembership, error) {
	if err := s.failOn("FindUserMemberships"); err != nil {
		return nil, err
	}
	return s.filter(func(m models.ProjectMembership) bool { return m.UserID == userID }), nil
}

func (s *MemMemberships) Create(_ context.Context, projectID, userID string, data models.ProjectMembership) (models.ProjectMembership, error) {
	if err := s.failOn("Create"); err != nil {
		return models.ProjectMembership{}, err
	}
	data.ProjectID = projectID
	data.UserID = userID
	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	if data.JoinedAt.IsZero() {
		data.JoinedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.items = append(s.items, data)
	s.mu.Unlock()
	return data, nil
}

func (s *MemMemberships) Update(_ context.Context, projectID, userID string, u models.MembershipUpdate) (*models.ProjectMembership, error) {
	if err := s.failOn("Update"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.latest(projectID, userID)
	if i < 0 {
		return nil, nil
	}
	m := &s.items[i]
	apply(m, u)
	out := *m
	return &out, nil
}

func (s *MemMemberships) SetStatus(_ context.Context, id string, from, to models.MembershipStatus) (bool, error) {
	if err := s.failOn("SetStatus"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].Status == from {
			s.items[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func apply(m *models.ProjectMembership, u models.MembershipUpdate) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.Role, u.Role)
	set(&m.RoleID, u.RoleID)
	set(&m.InvitedBy, u.InvitedBy)
	set(&m.Firstname, u.Firstname)
	set(&m.Lastname, u.Lastname)
	set(&m.Email, u.Email)
	set(&m.Phone, u.Phone)
	set(&m.PhotoURL, u.PhotoURL)
	if u.Permission != nil {
		m.Permission = *u.Permission
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	if u.JoinedAt != nil {
		m.JoinedAt = *u.JoinedAt
	}
	if u.LeftAt != nil {
		t := *u.LeftAt
		m.LeftAt = &t
	}
}

func (s *MemMemberships) remove(keep func(models.ProjectMembership) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	kept := s.items[:0]
	for _, m := range s.items {
		if keep(m) {
			kept = append(kept, m)
		} else {
			n++
		}
	}
	s.items = kept
	return n
}

func (s *MemMemberships) Delete(_ context.Context, projectID, userID string) error {
	if err := s.failOn("Delete"); err != nil {
		return err
	}
	s.remove(func(m models.ProjectMembership) bool { return m.ProjectID != projectID || m.UserID != userID })
	return nil
}

func (s *MemMemberships) DeleteByID(_ context.Context, id string) error {
	if err := s.failOn("DeleteByID"); err != nil {
		return err
	}
	s.remove(func(m models.ProjectMembership) bool { return m.ID != id })
	return nil
}

func (s *MemMemberships) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	if err := s.failOn("DeleteByProject"); err != nil {
		return 0, err
	}
	return s.remove(func(m models.ProjectMembership) bool { return m.ProjectID != projectID }), nil
}

func (s *MemMemberships) DistinctProjectIDs(context.Context) ([]string, error) {
	if err := s.failOn("DistinctProjectIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return distinct(len(s.items), func(i int) string { return s.items[i].ProjectID }), nil
}

// All returns a copy of every stored membership.
func (s *MemMemberships) All() []models.ProjectMembership {
	return s.filter(func(models.ProjectMembership) bool { return true })
}

// Put stores m as-is.
func (s *MemMemberships) Put(m models.ProjectMembership) models.ProjectMembership {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.items = append(s.items, m)
	s.mu.Unlock()
	return m
}

/* -------------------------------------------------------------------------- */

// MemNotifications is an in-memory notificationstore.
type MemNotifications struct {
	failures
	mu    sync.Mutex
	items []models.Notification
	clock int64
}

func NewMemNotifications() *MemNotifications { return &MemNotifications{} }

func (s *MemNotifications) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	if err := s.failOn("Create"); err != nil {
		return models.Notification{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		// strictly increasing so newest-first ordering is stable in tests
		s.clock++
		n.CreatedAt = time.Now().UTC().Add(time.Duration(s.clock) * time.Millisecond)
	}
	s.items = append(s.items, n)
	return n, nil
}

func (s *MemNotifications) Get(_ context.Context, id string) (*models.Notification, error) {
	if err := s.failOn("Get"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, nil
}

func (s *MemNotifications) Find(_ context.Context, f notificationstore.Filter) ([]models.Notification, error) {
	if err := s.failOn("Find"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.items {
		if f.UserID != "" && n.UserID != f.UserID {
			continue
		}
		if f.ProjectID != "" && n.Context.ProjectID != f.ProjectID {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.Responded != nil && n.Responded != *f.Responded {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemNotifications) ListForUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	return s.Find(ctx, notificationstore.Filter{UserID: userID, Limit: limit})
}

func (s *MemNotifications) update(id string, fn func(*models.Notification)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			fn(&s.items[i])
			return true
		}
	}
	return false
}

func (s *MemNotifications) MarkAsReadAndResponded(_ context.Context, id string, accepted bool) (bool, error) {
	if err := s.failOn("MarkAsReadAndResponded"); err != nil {
		return false, err
	}
	now := time.Now().UTC()
	return s.update(id, func(n *models.Notification) {
		n.Read = true
		n.Responded = true
		n.Accepted = &accepted
		n.RespondedAt = &now
	}), nil
}

func (s *MemNotifications) MarkAsRead(_ context.Context, id string) (bool, error) {
	if err := s.failOn("MarkAsRead"); err != nil {
		return false, err
	}
	return s.update(id, func(n *models.Notification) { n.Read = true }), nil
}

func (s *MemNotifications) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	if err := s.failOn("DeleteByProject"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	kept := s.items[:0]
	for _, it := range s.items {
		if it.Context.ProjectID == projectID {
			n++
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	return n, nil
}

func (s *MemNotifications) DistinctProjectIDs(context.Context) ([]string, error) {
	if err := s.failOn("DistinctProjectIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return distinct(len(s.items), func(i int) string { return s.items[i].Context.ProjectID }), nil
}

// All returns a copy of every stored notification in insertion order.
func (s *MemNotifications) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

// For returns userID's notifications of type t in insertion order.
func (s *MemNotifications) For(userID string, t models.NotificationType) []models.Notification {
	var out []models.Notification
	for _, n := range s.All() {
		if n.UserID == userID && n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

/* -------------------------------------------------------------------------- */

// MemUsers is an in-memory userstore.
type MemUsers struct {
	failures
	mu    sync.Mutex
	items map[string]models.User
}

func NewMemUsers(users ...models.User) *MemUsers {
	s := &MemUsers{items: map[string]models.User{}}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

func (s *MemUsers) Put(u models.User) models.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.items[u.ID] = u
	s.mu.Unlock()
	return u
}

func (s *MemUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := s.failOn("GetByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

/* -------------------------------------------------------------------------- */

// MemProjects is an in-memory projectstore.
type MemProjects struct {
	failures
	mu    sync.Mutex
	items map[string]models.Project
}

func NewMemProjects(projects ...models.Project) *MemProjects {
	s := &MemProjects{items: map[string]models.Project{}}
	for _, p := range projects {
		s.Put(p)
	}
	return s
}

func (s *MemProjects) Put(p models.Project) models.Project {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.items[p.ID] = p
	s.mu.Unlock()
	return p
}

func (s *MemProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	if err := s.failOn("GetByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemProjects) Delete(_ context.Context, id string) error {
	if err := s.failOn("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

func (s *MemProjects) ExistingIDs(_ context.Context, ids []string) (map[string]bool, error) {
	if err := s.failOn("ExistingIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

/* -------------------------------------------------------------------------- */

// MemEvents is an in-memory eventstore.
type MemEvents struct {
	failures
	mu    sync.Mutex
	items map[string]*models.Event
}

func NewMemEvents(events ...models.Event) *MemEvents {
	s := &MemEvents{items: map[string]*models.Event{}}
	for _, e := range events {
		s.Put(e)
	}
	return s
}

func (s *MemEvents) Put(e models.Event) models.Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Members == nil {
		e.Members = []string{}
	}
	s.mu.Lock()
	s.items[e.ID] = &e
	s.mu.Unlock()
	return e
}

func (s *MemEvents) Get(id string) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return models.Event{}, false
	}
	cp := *e
	cp.Members = append([]string(nil), e.Members...)
	return cp, true
}

func (s *MemEvents) AddMember(_ context.Context, eventID, membershipID string) error {
	if err := s.failOn("AddMember:" + eventID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[eventID]
	if !ok {
		return errors.New("event not found")
	}
	for _, m := range e.Members {
		if m == membershipID {
			return nil
		}
	}
	e.Members = append(e.Members, membershipID)
	return nil
}

func (s *MemEvents) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	if err := s.failOn("DeleteByProject"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.items {
		if e.ProjectID == projectID {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

// CountByProject returns how many events reference projectID.
func (s *MemEvents) CountByProject(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.items {
		if e.ProjectID == projectID {
			n++
		}
	}
	return n
}

/* -------------------------------------------------------------------------- */

// MemPosts is an in-memory poststore.
type MemPosts struct {
	failures
	mu    sync.Mutex
	items []models.Post
}

func NewMemPosts() *MemPosts { return &MemPosts{} }

func (s *MemPosts) Create(_ context.Context, p models.Post) (models.Post, error) {
	if err := s.failOn("Create"); err != nil {
		return models.Post{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.items = append(s.items, p)
	s.mu.Unlock()
	return p, nil
}

func (s *MemPosts) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	if err := s.failOn("DeleteByProject"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	kept := s.items[:0]
	for _, p := range s.items {
		if p.ProjectID == projectID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	s.items = kept
	return n, nil
}

// ByProject returns the posts of projectID.
func (s *MemPosts) ByProject(projectID string) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Post
	for _, p := range s.items {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out
}

/* -------------------------------------------------------------------------- */

// MemMessages counts chat messages per project.
type MemMessages struct {
	failures
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemMessages() *MemMessages { return &MemMessages{counts: map[string]int64{}} }

// Add records n messages in projectID.
func (s *MemMessages) Add(projectID string, n int64) {
	s.mu.Lock()
	s.counts[projectID] += n
	s.mu.Unlock()
}

// Count returns the number of messages in projectID.
func (s *MemMessages) Count(projectID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[projectID]
}

func (s *MemMessages) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	if err := s.failOn("DeleteByProject"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.counts[projectID]
	delete(s.counts, projectID)
	return n, nil
}

func distinct(n int, at func(int) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for i := 0; i < n; i++ {
		v := at(i)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
