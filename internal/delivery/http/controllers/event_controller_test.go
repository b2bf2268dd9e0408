package controllers

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"guestcheckin/internal/delivery/http/helpers"
	"guestcheckin/internal/delivery/http/middleware"
	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
	"guestcheckin/internal/repository/memory"
	"guestcheckin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	testNow     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	factoryAddr = ethsig.MustParseAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
)

func testKey(seed uint64) *ethsig.PrivateKey {
	b := make([]byte, 32)
	binary.BigEndian.PutUint64(b[24:], seed)
	key, err := ethsig.ParsePrivateKey(ethsig.EncodeHex(b))
	if err != nil {
		panic(err)
	}
	return key
}

// journalSink appends synchronously so the feed is readable right after a request.
type journalSink struct{ repo domain.JournalRepository }

func (s journalSink) Publish(n domain.Notification) { _ = s.repo.Append(context.Background(), &n) }

// addressVerifier treats the bearer token as the caller's hex address.
type addressVerifier struct{}

func (addressVerifier) Verify(token string) (domain.Address, error) {
	return ethsig.ParseAddress(token)
}

type apiFixture struct {
	mux *http.ServeMux
	svc domain.RegistryService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	clock := domain.ClockFunc(func() time.Time { return testNow })
	journal := memory.NewJournalRepository()
	factory := domain.NewFactory(factoryAddr, clock, journalSink{repo: journal})
	svc := services.NewRegistryService(factory, journal, testLogger, time.Second)
	return &apiFixture{mux: newTestMux(svc), svc: svc}
}

func newTestMux(svc domain.RegistryService) *http.ServeMux {
	events := NewEventController(testLogger, svc)
	notifications := NewNotificationController(testLogger, svc)
	auth := middleware.RequireAuth(addressVerifier{}, testLogger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", auth(events.CreateEvent))
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("GET /events/index/{index}", events.EventAt)
	mux.HandleFunc("GET /events/{address}", events.GetEvent)
	mux.HandleFunc("PATCH /events/{address}/status", auth(events.SetEventStatus))
	mux.HandleFunc("PUT /events/{address}/owner", auth(events.TransferOwnership))
	mux.HandleFunc("DELETE /events/{address}/owner", auth(events.RenounceOwnership))
	mux.HandleFunc("GET /events/{address}/digest", events.Digest)
	mux.HandleFunc("POST /events/{address}/verify", events.VerifySignature)
	mux.HandleFunc("POST /events/{address}/check-ins", auth(events.CheckIn))
	mux.HandleFunc("GET /events/{address}/attendees", events.ListAttendees)
	mux.HandleFunc("GET /events/{address}/attendees/{attendee}", events.HasAttended)
	mux.HandleFunc("GET /notifications", notifications.ListNotifications)
	return mux
}

func (f *apiFixture) do(t *testing.T, method, path string, caller *domain.Address, body any) (*httptest.ResponseRecorder, helpers.APIResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://test"+path, reader)
	if caller != nil {
		req.Header.Set("Authorization", "Bearer "+caller.Hex())
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)

	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&envelope))
	return rr, envelope
}

// decodeData re-decodes the envelope data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

func (f *apiFixture) createEvent(t *testing.T, owner domain.Address, capacity uint32) domain.RegistryInfo {
	t.Helper()
	rr, env := f.do(t, http.MethodPost, "/events", &owner, CreateEventRequest{
		Name:         "Conf",
		EventDate:    uint32(testNow.Add(48 * time.Hour).Unix()),
		MaxAttendees: capacity,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var info domain.RegistryInfo
	decodeData(t, env, &info)
	return info
}

func (f *apiFixture) authorize(t *testing.T, key *ethsig.PrivateKey, registry, attendee domain.Address) string {
	t.Helper()
	rr, env := f.do(t, http.MethodGet, "/events/"+registry.Hex()+"/digest?attendee="+attendee.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var pair domain.DigestPair
	decodeData(t, env, &pair)
	return ethsig.EncodeHex(ethsig.Sign(key, pair.SignedDigest))
}

func TestEventController_CreateEvent(t *testing.T) {
	owner := ethsig.KeyAddress(testKey(1))

	tests := []struct {
		name       string
		caller     *domain.Address
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			caller:     &owner,
			body:       CreateEventRequest{Name: "Conf", EventDate: uint32(testNow.Add(time.Hour).Unix()), MaxAttendees: 3},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			body:       CreateEventRequest{Name: "Conf", EventDate: uint32(testNow.Add(time.Hour).Unix()), MaxAttendees: 3},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "missing name",
			caller:     &owner,
			body:       CreateEventRequest{EventDate: uint32(testNow.Add(time.Hour).Unix())},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "unknown field",
			caller:     &owner,
			body:       map[string]any{"name": "Conf", "event_date": 1, "owner": "0x00"},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "past date",
			caller:     &owner,
			body:       CreateEventRequest{Name: "Conf", EventDate: uint32(testNow.Unix()), MaxAttendees: 3},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodePastEventDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			rr, env := f.do(t, http.MethodPost, "/events", tt.caller, tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			var info domain.RegistryInfo
			decodeData(t, env, &info)
			assert.Equal(t, ethsig.CreateAddress(factoryAddr, 1), info.Address)
			assert.Equal(t, owner, info.Owner)
			assert.True(t, info.IsActive)
			assert.Equal(t, uint32(3), info.MaxAttendees)
		})
	}
}

func TestEventController_ListAndIndex(t *testing.T) {
	f := newAPIFixture(t)
	owner := ethsig.KeyAddress(testKey(1))
	first := f.createEvent(t, owner, 1)
	second := f.createEvent(t, owner, 1)

	rr, env := f.do(t, http.MethodGet, "/events", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list ListEventsResponse
	decodeData(t, env, &list)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, []domain.Address{first.Address, second.Address}, list.Events)

	rr, env = f.do(t, http.MethodGet, "/events/index/1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var at EventAtResponse
	decodeData(t, env, &at)
	assert.Equal(t, second.Address, at.Address)

	rr, env = f.do(t, http.MethodGet, "/events/index/2", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, helpers.ErrCodeIndexOutOfRange, env.Error.Code)

	rr, env = f.do(t, http.MethodGet, "/events/index/x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code)

	rr, _ = f.do(t, http.MethodGet, "/events/"+first.Address.Hex(), nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = f.do(t, http.MethodGet, "/events/0x1234", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code)

	rr, env = f.do(t, http.MethodGet, "/events/0x00000000000000000000000000000000000000aa", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, helpers.ErrCodeNotFound, env.Error.Code)
}

func TestEventController_CheckInScenario(t *testing.T) {
	f := newAPIFixture(t)
	ownerKey := testKey(1)
	owner := ethsig.KeyAddress(ownerKey)
	info := f.createEvent(t, owner, 2)
	base := "/events/" + info.Address.Hex()

	guests := []domain.Address{
		ethsig.KeyAddress(testKey(1001)),
		ethsig.KeyAddress(testKey(1002)),
		ethsig.KeyAddress(testKey(1003)),
	}
	sigA := f.authorize(t, ownerKey, info.Address, guests[0])

	rr, env := f.do(t, http.MethodPost, base+"/verify", nil, VerifyRequest{Attendee: guests[0].Hex(), Signature: sigA})
	require.Equal(t, http.StatusOK, rr.Code)
	var vr domain.VerifyResult
	decodeData(t, env, &vr)
	assert.True(t, vr.Valid)
	assert.Equal(t, owner, vr.Signer)

	rr, env = f.do(t, http.MethodPost, base+"/check-ins", &guests[0], CheckInRequest{Signature: sigA})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var rec domain.CheckIn
	decodeData(t, env, &rec)
	assert.Equal(t, guests[0], rec.Attendee)
	assert.Equal(t, uint64(testNow.Unix()), rec.Timestamp)

	rr, env = f.do(t, http.MethodPost, base+"/check-ins", &guests[0], CheckInRequest{Signature: sigA})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, helpers.ErrCodeAlreadyCheckedIn, env.Error.Code)

	rr, env = f.do(t, http.MethodPost, base+"/check-ins", &guests[1], CheckInRequest{Signature: sigA})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, helpers.ErrCodeInvalidSignature, env.Error.Code)

	rr, _ = f.do(t, http.MethodPost, base+"/check-ins", &guests[1], CheckInRequest{Signature: f.authorize(t, ownerKey, info.Address, guests[1])})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, env = f.do(t, http.MethodPost, base+"/check-ins", &guests[2], CheckInRequest{Signature: f.authorize(t, ownerKey, info.Address, guests[2])})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, helpers.ErrCodeCapacityReached, env.Error.Code)

	rr, env = f.do(t, http.MethodGet, base+"/attendees?page=1&page_size=1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page ListAttendeesResponse
	decodeData(t, env, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, guests[0], page.Items[0].Attendee)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasMore)

	rr, env = f.do(t, http.MethodGet, base+"/attendees?page=4611686018427387904&page_size=100", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page = ListAttendeesResponse{}
	decodeData(t, env, &page)
	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.False(t, page.Pagination.HasMore)

	rr, env = f.do(t, http.MethodGet, base+"/attendees?page=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code)

	rr, env = f.do(t, http.MethodGet, base+"/attendees/"+guests[1].Hex(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var att AttendanceResponse
	decodeData(t, env, &att)
	assert.True(t, att.Attended)

	rr, env = f.do(t, http.MethodGet, base+"/attendees/"+guests[2].Hex(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, env, &att)
	assert.False(t, att.Attended)
}

func TestEventController_SignatureErrors(t *testing.T) {
	f := newAPIFixture(t)
	info := f.createEvent(t, ethsig.KeyAddress(testKey(1)), 2)
	guest := ethsig.KeyAddress(testKey(1001))
	base := "/events/" + info.Address.Hex()

	badV := make([]byte, 65)
	badV[64] = 29

	tests := []struct {
		name       string
		signature  string
		wantStatus int
		wantCode   string
	}{
		{"not hex", "0xzz", http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"empty", "", http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"short", ethsig.EncodeHex(make([]byte, 64)), http.StatusBadRequest, helpers.ErrCodeInvalidSignatureLength},
		{"bad v", ethsig.EncodeHex(badV), http.StatusBadRequest, helpers.ErrCodeInvalidSignatureV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := f.do(t, http.MethodPost, base+"/check-ins", &guest, CheckInRequest{Signature: tt.signature})
			assert.Equal(t, tt.wantStatus, rr.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)

			rr, env = f.do(t, http.MethodPost, base+"/verify", nil, VerifyRequest{Attendee: guest.Hex(), Signature: tt.signature})
			assert.Equal(t, tt.wantStatus, rr.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}

	rr, env := f.do(t, http.MethodGet, base+"/digest", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code)
}

func TestEventController_OwnerEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	ownerKey, nextKey := testKey(1), testKey(2)
	owner, next := ethsig.KeyAddress(ownerKey), ethsig.KeyAddress(nextKey)
	info := f.createEvent(t, owner, 5)
	base := "/events/" + info.Address.Hex()
	guest := ethsig.KeyAddress(testKey(1001))
	inactive := false

	rr, env := f.do(t, http.MethodPatch, base+"/status", &next, SetStatusRequest{Active: &inactive})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, helpers.ErrCodeNotOwner, env.Error.Code)

	rr, env = f.do(t, http.MethodPatch, base+"/status", &owner, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code)

	rr, env = f.do(t, http.MethodPatch, base+"/status", &owner, SetStatusRequest{Active: &inactive})
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.RegistryInfo
	decodeData(t, env, &got)
	assert.False(t, got.IsActive)

	rr, env = f.do(t, http.MethodPost, base+"/check-ins", &guest, CheckInRequest{Signature: f.authorize(t, ownerKey, info.Address, guest)})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, helpers.ErrCodeEventInactive, env.Error.Code)

	rr, env = f.do(t, http.MethodPut, base+"/owner", &owner, TransferOwnershipRequest{NewOwner: domain.Address{}.Hex()})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeInvalidOwner, env.Error.Code)

	rr, env = f.do(t, http.MethodPut, base+"/owner", &owner, TransferOwnershipRequest{NewOwner: next.Hex()})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, env, &got)
	assert.Equal(t, next, got.Owner)

	rr, env = f.do(t, http.MethodPut, base+"/owner", &owner, TransferOwnershipRequest{NewOwner: owner.Hex()})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, helpers.ErrCodeNotOwner, env.Error.Code)

	rr, env = f.do(t, http.MethodDelete, base+"/owner", &owner, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, helpers.ErrCodeNotOwner, env.Error.Code)

	rr, env = f.do(t, http.MethodDelete, base+"/owner", &next, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, env, &got)
	assert.True(t, got.Owner.IsZero())

	rr, env = f.do(t, http.MethodPost, base+"/verify", nil, VerifyRequest{Attendee: guest.Hex(), Signature: f.authorize(t, nextKey, info.Address, guest)})
	require.Equal(t, http.StatusOK, rr.Code)
	var vr domain.VerifyResult
	decodeData(t, env, &vr)
	assert.False(t, vr.Valid)
}

func TestNotificationController_ListNotifications(t *testing.T) {
	f := newAPIFixture(t)
	owner := ethsig.KeyAddress(testKey(1))
	first := f.createEvent(t, owner, 5)
	f.createEvent(t, owner, 5)

	rr, env := f.do(t, http.MethodGet, "/notifications", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var feed ListNotificationsResponse
	decodeData(t, env, &feed)
	require.Len(t, feed.Items, 8)
	assert.Equal(t, int64(8), feed.NextAfter)

	rr, env = f.do(t, http.MethodGet, "/notifications?after=2&limit=3", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, env, &feed)
	require.Len(t, feed.Items, 3)
	assert.Equal(t, int64(3), feed.Items[0].ID)
	assert.Equal(t, int64(5), feed.NextAfter)

	rr, env = f.do(t, http.MethodGet, "/notifications?source="+first.Address.Hex()+","+factoryAddr.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, env, &feed)
	assert.Len(t, feed.Items, 5)

	for _, q := range []string{"after=-1", "limit=0", "source=nope"} {
		rr, env = f.do(t, http.MethodGet, "/notifications?"+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		assert.Equal(t, helpers.ErrCodeBadRequest, env.Error.Code, q)
	}
}

// failingService returns an unclassified error from every fallible call.
type failingService struct {
	domain.RegistryService
	err error
}

func (s failingService) ListNotifications(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	return nil, s.err
}

func (s failingService) GetEvent(ctx context.Context, registry domain.Address) (*domain.RegistryInfo, error) {
	return nil, s.err
}

func TestControllers_InternalErrorHidesDetail(t *testing.T) {
	mux := newTestMux(failingService{err: errors.New("connection refused on 10.0.0.5")})
	f := &apiFixture{mux: mux}

	for _, path := range []string{"/notifications", "/events/" + factoryAddr.Hex()} {
		rr, env := f.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, path)
		require.NotNil(t, env.Error)
		assert.Equal(t, helpers.ErrCodeInternalError, env.Error.Code)
		assert.NotContains(t, env.Error.Message, "10.0.0.5")
	}
}

func TestParseNotificationFilter_LimitClamp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://test/notifications?limit="+strconv.Itoa(MaxNotificationLimit*2), nil)
	filter, problem := parseNotificationFilter(req)
	require.Empty(t, problem)
	assert.Equal(t, MaxNotificationLimit, filter.Limit)
}
