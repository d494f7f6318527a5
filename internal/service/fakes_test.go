package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"cabinet-backend/internal/event"
	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

// fakeUserStore mirrors the repository's observable behavior, including the
// side effects bundled into status and password writes.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.User{}, apierror.NotFound("user not found", id)
	}
	return *u, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return model.User{}, apierror.NotFound("user not found", email)
}

func (f *fakeUserStore) FindByIDs(_ context.Context, ids []string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[u.ID] = &u
	return nil
}

func (f *fakeUserStore) SetRefreshTokenHash(_ context.Context, userID string, hash *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return apierror.NotFound("user not found", userID)
	}
	u.RefreshTokenHash = hash
	return nil
}

func (f *fakeUserStore) SetPasswordReset(_ context.Context, userID string, tokenHash string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return apierror.NotFound("user not found", userID)
	}
	u.PasswordResetTokenHash = &tokenHash
	u.PasswordResetExpires = &expires
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return apierror.NotFound("user not found", userID)
	}
	u.PasswordHash = passwordHash
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
	u.RefreshTokenHash = nil
	return nil
}

func (f *fakeUserStore) SetTwoFactor(_ context.Context, userID string, secret *string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return apierror.NotFound("user not found", userID)
	}
	u.TwoFactorSecret = secret
	u.TwoFactorEnabled = enabled
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, in model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[in.ID]
	if !ok {
		return apierror.NotFound("user not found", in.ID)
	}
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	u.Ministry = in.Ministry
	u.Title = in.Title
	u.Role = in.Role
	return nil
}

func (f *fakeUserStore) SetStatus(_ context.Context, userID string, status model.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return apierror.NotFound("user not found", userID)
	}
	u.Status = status
	if status == model.UserInactive {
		u.RefreshTokenHash = nil
	}
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return apierror.NotFound("user not found", id)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) ListActive(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		if u.Status == model.UserActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) get(id string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

type fakeApiKeyStore struct {
	mu   sync.Mutex
	keys map[string]*model.ApiKey
}

func newFakeApiKeyStore() *fakeApiKeyStore {
	return &fakeApiKeyStore{keys: make(map[string]*model.ApiKey)}
}

func (f *fakeApiKeyStore) FindByKey(_ context.Context, key string) (model.ApiKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, k := range f.keys {
		if k.Key == key {
			return *k, nil
		}
	}
	return model.ApiKey{}, apierror.NotFound("api key not found", "")
}

func (f *fakeApiKeyStore) FindByID(_ context.Context, id string) (model.ApiKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, ok := f.keys[id]
	if !ok {
		return model.ApiKey{}, apierror.NotFound("api key not found", id)
	}
	return *k, nil
}

func (f *fakeApiKeyStore) Create(_ context.Context, k model.ApiKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keys[k.ID] = &k
	return nil
}

func (f *fakeApiKeyStore) SetStatus(_ context.Context, id string, status model.ApiKeyStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, ok := f.keys[id]
	if !ok {
		return apierror.NotFound("api key not found", id)
	}
	k.Status = status
	return nil
}

func (f *fakeApiKeyStore) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, ok := f.keys[id]
	if !ok {
		return apierror.NotFound("api key not found", id)
	}
	k.LastUsedAt = &at
	return nil
}

func (f *fakeApiKeyStore) ListByUser(_ context.Context, userID string) ([]model.ApiKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.ApiKey{}
	for _, k := range f.keys {
		if k.UserID == userID {
			out = append(out, *k)
		}
	}
	return out, nil
}

func (f *fakeApiKeyStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.keys[id]; !ok {
		return apierror.NotFound("api key not found", id)
	}
	delete(f.keys, id)
	return nil
}

func (f *fakeApiKeyStore) get(id string) model.ApiKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.keys[id]
}

type fakeAvailabilityStore struct {
	mu      sync.Mutex
	records map[string]*model.Availability
}

func newFakeAvailabilityStore() *fakeAvailabilityStore {
	return &fakeAvailabilityStore{records: make(map[string]*model.Availability)}
}

func (f *fakeAvailabilityStore) FindByID(_ context.Context, id string) (model.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.records[id]
	if !ok {
		return model.Availability{}, apierror.NotFound("availability not found", id)
	}
	return *a, nil
}

func (f *fakeAvailabilityStore) Create(_ context.Context, a model.Availability) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records[a.ID] = &a
	return nil
}

func (f *fakeAvailabilityStore) Update(_ context.Context, a model.Availability) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[a.ID]; !ok {
		return apierror.NotFound("availability not found", a.ID)
	}
	f.records[a.ID] = &a
	return nil
}

func (f *fakeAvailabilityStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[id]; !ok {
		return apierror.NotFound("availability not found", id)
	}
	delete(f.records, id)
	return nil
}

func (f *fakeAvailabilityStore) ListForUser(_ context.Context, userID string) ([]model.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.Availability{}
	for _, a := range f.records {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityStore) ListAll(_ context.Context) ([]model.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.Availability{}
	for _, a := range f.records {
		out = append(out, *a)
	}
	return out, nil
}

type fakeEventStore struct {
	mu     sync.Mutex
	events map[string]*model.CabinetEvent
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[string]*model.CabinetEvent)}
}

func (f *fakeEventStore) FindByID(_ context.Context, id string) (model.CabinetEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok {
		return model.CabinetEvent{}, apierror.NotFound("event not found", id)
	}
	return *e, nil
}

func (f *fakeEventStore) Create(_ context.Context, e model.CabinetEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events[e.ID] = &e
	return nil
}

func (f *fakeEventStore) Update(_ context.Context, e model.CabinetEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[e.ID]; !ok {
		return apierror.NotFound("event not found", e.ID)
	}
	f.events[e.ID] = &e
	return nil
}

func (f *fakeEventStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[id]; !ok {
		return apierror.NotFound("event not found", id)
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventStore) List(_ context.Context) ([]model.CabinetEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.CabinetEvent{}
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications map[string]model.Notification
	fanout        map[string]*model.UserNotification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{
		notifications: make(map[string]model.Notification),
		fanout:        make(map[string]*model.UserNotification),
	}
}

func (f *fakeNotificationStore) CreateBroadcast(_ context.Context, n model.Notification, fanout []model.UserNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications[n.ID] = n
	for _, un := range fanout {
		un.Notification = n
		copied := un
		f.fanout[un.ID] = &copied
	}
	return nil
}

func (f *fakeNotificationStore) ListForUser(_ context.Context, userID string, unreadOnly bool) ([]model.UserNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.UserNotification{}
	for _, un := range f.fanout {
		if un.UserID != userID {
			continue
		}
		if unreadOnly && un.Read {
			continue
		}
		out = append(out, *un)
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userNotificationID string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	un, ok := f.fanout[userNotificationID]
	if !ok || un.UserID != userID {
		return apierror.NotFound("notification not found", userNotificationID)
	}
	un.Read = true
	return nil
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) Publish(e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe() (<-chan event.Event, func()) {
	ch := make(chan event.Event)
	return ch, func() {}
}

func (b *recordingBus) emails() []event.EmailPayload {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []event.EmailPayload{}
	for _, e := range b.events {
		if e.Type != event.TypeEmailRequested {
			continue
		}
		if p, ok := e.Payload.(event.EmailPayload); ok {
			out = append(out, p)
		}
	}
	return out
}
