package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	accountrepo "mailsweep/internal/account/repository"
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/internal/email/repository"
	"mailsweep/internal/testutil"
	"mailsweep/pkg/ai"

	"github.com/google/uuid"
	"github.com/nalgeon/be"
	"go.uber.org/zap"
)

// stubLLM answers each prompt kind with a fixed reply and counts calls.
type stubLLM struct {
	mu       sync.Mutex
	summary  string
	classify string
	link     string
	err      error
	calls    map[string]int
	prompts  map[string]string
}

func (s *stubLLM) Complete(ctx context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	kind := "link"
	switch {
	case strings.Contains(req.System, "summarizer"):
		kind = "summary"
	case strings.Contains(req.System, "classifier"):
		kind = "classify"
	}
	s.calls[kind]++
	if s.prompts == nil {
		s.prompts = map[string]string{}
	}
	s.prompts[kind] = req.Prompt
	if s.err != nil {
		return "", s.err
	}
	switch kind {
	case "summary":
		return s.summary, nil
	case "classify":
		return s.classify, nil
	}
	return s.link, nil
}

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

type fixture struct {
	user       *accountdomain.User
	account    *accountdomain.MailboxAccount
	accounts   accountrepo.MailboxAccountRepository
	categories repository.CategoryRepository
	messages   repository.MessageRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	user := &accountdomain.User{ID: uuid.New().String(), Email: "owner@example.com"}
	be.Err(t, db.Create(user).Error, nil)
	account := &accountdomain.MailboxAccount{
		ID:       uuid.New().String(),
		UserID:   user.ID,
		Email:    "box@example.com",
		GoogleID: "g-1",
	}
	be.Err(t, db.Create(account).Error, nil)

	return &fixture{
		user:       user,
		account:    account,
		accounts:   accountrepo.NewMailboxAccountRepository(db),
		categories: repository.NewCategoryRepository(db),
		messages:   repository.NewMessageRepository(db),
	}
}

func (f *fixture) category(t *testing.T, userID, name string) *emaildomain.Category {
	t.Helper()
	c := &emaildomain.Category{UserID: userID, Name: name}
	be.Err(t, f.categories.Create(c), nil)
	return c
}

// Extractor

func TestExtractHeaderURLBeatsMailto(t *testing.T) {
	llm := &stubLLM{link: "https://ai.test/should-not-be-used"}
	raw := &emaildomain.RawMessage{
		Headers: []emaildomain.Header{{Name: "List-Unsubscribe", Value: "<https://x.test/u>, <mailto:a@x.test>"}},
		Payload: &emaildomain.MessagePart{MimeType: "text/plain", Data: encode("hello")},
	}
	out := NewExtractor(llm, zap.NewNop()).Extract(context.Background(), raw)
	be.Equal(t, *out.UnsubscribeLink, "https://x.test/u")
	be.Equal(t, out.Text, "hello")
	be.Equal(t, llm.calls["link"], 0)
}

func TestExtractHeaderMailto(t *testing.T) {
	raw := &emaildomain.RawMessage{
		Headers: []emaildomain.Header{{Name: "list-unsubscribe", Value: "<mailto:leave@x.test?subject=unsub>"}},
		Payload: &emaildomain.MessagePart{MimeType: "text/plain", Data: encode("hi")},
	}
	out := NewExtractor(&stubLLM{}, zap.NewNop()).Extract(context.Background(), raw)
	be.Equal(t, *out.UnsubscribeLink, "mailto:leave@x.test?subject=unsub")
}

func TestExtractFallsBackToAIScan(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reply  string
		want   string
	}{
		{"no header, url", "", "https://shop.test/optout", "https://shop.test/optout"},
		{"unbracketed header", "https://shop.test/u", "https://shop.test/u2", "https://shop.test/u2"},
		{"none reply", "", "None", ""},
		{"prose reply", "", "Click the link at the bottom", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &stubLLM{link: tt.reply}
			raw := &emaildomain.RawMessage{
				Payload: &emaildomain.MessagePart{MimeType: "text/html", Data: encode("<a href='x'>unsubscribe</a>")},
			}
			if tt.header != "" {
				raw.Headers = []emaildomain.Header{{Name: "List-Unsubscribe", Value: tt.header}}
			}
			out := NewExtractor(llm, zap.NewNop()).Extract(context.Background(), raw)
			be.Equal(t, llm.calls["link"], 1)
			if tt.want == "" {
				be.True(t, out.UnsubscribeLink == nil)
				return
			}
			be.Equal(t, *out.UnsubscribeLink, tt.want)
		})
	}
}

func TestExtractSkipsAIScanWithoutBody(t *testing.T) {
	llm := &stubLLM{link: "https://x.test"}
	out := NewExtractor(llm, zap.NewNop()).Extract(context.Background(), &emaildomain.RawMessage{
		Payload: &emaildomain.MessagePart{MimeType: "text/plain"},
	})
	be.True(t, out.UnsubscribeLink == nil)
	be.Equal(t, llm.calls["link"], 0)
}

func TestExtractScansTextWhenHTMLIsUndecodable(t *testing.T) {
	llm := &stubLLM{link: "https://shop.test/optout"}
	raw := &emaildomain.RawMessage{
		Payload: &emaildomain.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*emaildomain.MessagePart{
				{MimeType: "text/plain", Data: encode("opt out at https://shop.test/optout")},
				{MimeType: "text/html", Data: "!!not base64!!"},
			},
		},
	}
	out := NewExtractor(llm, zap.NewNop()).Extract(context.Background(), raw)
	be.Equal(t, *out.HTML, "")
	be.Equal(t, llm.calls["link"], 1)
	be.True(t, strings.Contains(llm.prompts["link"], "opt out at https://shop.test/optout"))
	be.Equal(t, *out.UnsubscribeLink, "https://shop.test/optout")
}

func TestExtractWalksNestedParts(t *testing.T) {
	payload := &emaildomain.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*emaildomain.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*emaildomain.MessagePart{
					{MimeType: "text/plain", Data: base64.RawURLEncoding.EncodeToString([]byte("plain"))},
					{MimeType: "text/html", Data: encode("<p>html</p>")},
				},
			},
			{MimeType: "text/plain", Data: encode("second plain")},
		},
	}
	text, html := bodies(payload)
	be.Equal(t, *text, "plain")
	be.Equal(t, *html, "<p>html</p>")
}

func TestExtractSinglePartHTML(t *testing.T) {
	text, html := bodies(&emaildomain.MessagePart{MimeType: "text/html", Data: encode("<b>x</b>")})
	be.True(t, text == nil)
	be.Equal(t, *html, "<b>x</b>")
}

// Enrichment

func TestParseClassification(t *testing.T) {
	tests := []struct {
		reply string
		n     int
		pos   int
		ok    bool
	}{
		{"2", 3, 2, true},
		{"Category 3", 3, 3, true},
		{" 1.", 3, 1, true},
		{"none", 3, 0, false},
		{"NONE", 3, 0, false},
		{"4", 3, 0, false},
		{"0", 3, 0, false},
		{"no idea", 3, 0, false},
	}
	for _, tt := range tests {
		pos, ok := parseClassification(tt.reply, tt.n)
		be.Equal(t, ok, tt.ok)
		be.Equal(t, pos, tt.pos)
	}
}

func TestClassifyByPosition(t *testing.T) {
	f := newFixture(t)
	f.category(t, f.user.ID, "Work")
	f.category(t, f.user.ID, "Newsletters")
	cats, err := f.categories.FindByUserID(f.user.ID)
	be.Err(t, err, nil)

	llm := &stubLLM{classify: "1"}
	svc := NewEnrichmentService(llm, f.categories, f.messages, zap.NewNop())

	// ordered by name: Newsletters, Work
	id := svc.Classify(context.Background(), "weekly digest", cats)
	be.Equal(t, *id, cats[0].ID)
	be.Equal(t, cats[0].Name, "Newsletters")

	llm.classify = "7"
	be.True(t, svc.Classify(context.Background(), "x", cats) == nil)

	be.True(t, svc.Classify(context.Background(), "x", nil) == nil)
}

func TestSummarizeReturnsSentinelOnFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewEnrichmentService(&stubLLM{err: errors.New("boom")}, f.categories, f.messages, zap.NewNop())
	be.Equal(t, svc.Summarize(context.Background(), "body", "subject"), emaildomain.SummaryErrorText)
	be.True(t, svc.FindUnsubscribeLink(context.Background(), "body") == nil)
}

func TestProcessMarksDegradedOnProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.category(t, f.user.ID, "Work")
	m := &emaildomain.Message{RemoteID: "r1", AccountID: f.account.ID, UserID: f.user.ID, Content: "body"}
	be.Err(t, f.messages.Create(m), nil)

	svc := NewEnrichmentService(&stubLLM{err: errors.New("down")}, f.categories, f.messages, zap.NewNop())
	svc.Process(context.Background(), m)

	got, err := f.messages.FindByID(m.ID)
	be.Err(t, err, nil)
	be.Equal(t, got.EnrichmentStatus, emaildomain.EnrichmentDegraded)
	be.Equal(t, *got.Summary, emaildomain.SummaryErrorText)
	be.True(t, got.CategoryID == nil)
}

func TestProcessStoresSummaryCategoryAndLink(t *testing.T) {
	f := newFixture(t)
	work := f.category(t, f.user.ID, "Work")
	m := &emaildomain.Message{RemoteID: "r1", AccountID: f.account.ID, UserID: f.user.ID, Content: "meeting at 3"}
	be.Err(t, f.messages.Create(m), nil)

	llm := &stubLLM{summary: "Meeting at 3.", classify: "1", link: "To unsubscribe reply STOP"}
	NewEnrichmentService(llm, f.categories, f.messages, zap.NewNop()).Process(context.Background(), m)

	got, err := f.messages.FindByID(m.ID)
	be.Err(t, err, nil)
	be.Equal(t, got.EnrichmentStatus, emaildomain.EnrichmentDone)
	be.Equal(t, *got.Summary, "Meeting at 3.")
	be.Equal(t, *got.CategoryID, work.ID)
	// free-text instructions are not stored as a link
	be.True(t, got.UnsubscribeLink == nil)
}

// Category usecase

func TestCategoryOwnership(t *testing.T) {
	f := newFixture(t)
	svc := NewCategoryUsecase(f.categories, f.messages, zap.NewNop())

	c, err := svc.CreateCategory(f.user.ID, "Receipts & Bills", nil)
	be.Err(t, err, nil)

	_, err = svc.ListEmailsForCategory("someone-else", c.ID)
	be.Err(t, err, emaildomain.ErrForbidden)
	be.Err(t, svc.DeleteCategory("someone-else", c.ID), emaildomain.ErrForbidden)

	_, err = svc.ListEmailsForCategory(f.user.ID, "missing")
	be.Err(t, err, emaildomain.ErrCategoryNotFound)

	_, err = svc.CreateCategory(f.user.ID, "<b>bad</b>", nil)
	be.Err(t, err, emaildomain.ErrInvalidCategoryName)

	be.Err(t, svc.DeleteCategory(f.user.ID, c.ID), nil)
	cats, err := svc.ListCategories(f.user.ID)
	be.Err(t, err, nil)
	be.Equal(t, len(cats), 0)
}

// Sync

type fakeSource struct {
	mu       sync.Mutex
	since    []time.Time
	ids      []string
	listErr  error
	messages map[string]*emaildomain.RawMessage
	fetchErr map[string]error
	onFetch  func(remoteID string)
	archErr  error
	archived []string
}

func (s *fakeSource) ListNew(ctx context.Context, since time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = append(s.since, since)
	return s.ids, s.listErr
}

func (s *fakeSource) Fetch(ctx context.Context, remoteID string) (*emaildomain.RawMessage, error) {
	if s.onFetch != nil {
		s.onFetch(remoteID)
	}
	if err := s.fetchErr[remoteID]; err != nil {
		return nil, err
	}
	return s.messages[remoteID], nil
}

func (s *fakeSource) Archive(ctx context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived = append(s.archived, remoteID)
	return s.archErr
}

type fakeOpener struct {
	src emaildomain.MailSource
	err error
}

func (o fakeOpener) Open(ctx context.Context, account *accountdomain.MailboxAccount) (emaildomain.MailSource, error) {
	return o.src, o.err
}

var syncNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func rawMessage(id, subject string) *emaildomain.RawMessage {
	headers := []emaildomain.Header{
		{Name: "From", Value: "Shop <news@shop.test>"},
		{Name: "List-Unsubscribe", Value: "<https://shop.test/u>"},
	}
	if subject != "" {
		headers = append(headers, emaildomain.Header{Name: "Subject", Value: subject})
	}
	return &emaildomain.RawMessage{
		RemoteID:     id,
		InternalDate: syncNow.Add(-time.Hour),
		Headers:      headers,
		Payload:      &emaildomain.MessagePart{MimeType: "text/plain", Data: encode("Sale on " + id)},
	}
}

func newSync(f *fixture, src emaildomain.MailSource, opts ...SyncOption) SyncUsecase {
	llm := &stubLLM{summary: "A sale.", classify: "None"}
	opts = append([]SyncOption{WithClock(func() time.Time { return syncNow })}, opts...)
	return NewSyncUsecase(
		f.accounts,
		f.messages,
		fakeOpener{src: src},
		NewExtractor(llm, zap.NewNop()),
		NewEnrichmentService(llm, f.categories, f.messages, zap.NewNop()),
		zap.NewNop(),
		opts...,
	)
}

func TestSyncNeverSyncedUsesLookbackWindow(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{}

	be.Err(t, newSync(f, src).SyncAccount(context.Background(), f.account), nil)

	be.Equal(t, len(src.since), 1)
	be.True(t, src.since[0].Equal(syncNow.Add(-24*time.Hour)))

	got, err := f.accounts.FindByID(f.account.ID)
	be.Err(t, err, nil)
	be.True(t, got.LastSyncTime != nil)
	be.True(t, got.LastSyncTime.Equal(syncNow))
}

func TestSyncStoresEnrichesAndArchives(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{
		ids:      []string{"m1", "m2"},
		messages: map[string]*emaildomain.RawMessage{"m1": rawMessage("m1", "Big sale"), "m2": rawMessage("m2", "")},
	}

	be.Err(t, newSync(f, src).SyncAccount(context.Background(), f.account), nil)

	msgs, err := f.messages.FindByUser(f.user.ID, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(msgs), 2)
	be.Equal(t, src.archived, []string{"m1", "m2"})

	byRemote := map[string]*emaildomain.Message{}
	for _, m := range msgs {
		byRemote[m.RemoteID] = m
	}
	be.Equal(t, byRemote["m1"].Subject, "Big sale")
	be.Equal(t, byRemote["m2"].Subject, "No Subject")
	be.Equal(t, byRemote["m1"].Sender, "Shop <news@shop.test>")
	be.Equal(t, byRemote["m1"].Content, "Sale on m1")
	be.Equal(t, *byRemote["m1"].UnsubscribeLink, "https://shop.test/u")
	be.Equal(t, *byRemote["m1"].Summary, "A sale.")
	be.True(t, byRemote["m1"].IsArchived)
}

func TestSyncDoesNotIngestTwice(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{
		ids:      []string{"m1", "m1"},
		messages: map[string]*emaildomain.RawMessage{"m1": rawMessage("m1", "Hi")},
	}
	svc := newSync(f, src)
	be.Err(t, svc.SyncAccount(context.Background(), f.account), nil)
	be.Err(t, svc.SyncAccount(context.Background(), f.account), nil)

	msgs, err := f.messages.FindByUser(f.user.ID, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(msgs), 1)
}

func TestSyncIsolatesMessageFailures(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{
		ids:      []string{"m1", "broken", "m3"},
		messages: map[string]*emaildomain.RawMessage{"m1": rawMessage("m1", "a"), "m3": rawMessage("m3", "c")},
		fetchErr: map[string]error{"broken": errors.New("500 backend error")},
	}

	be.Err(t, newSync(f, src).SyncAccount(context.Background(), f.account), nil)

	msgs, err := f.messages.FindByUser(f.user.ID, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(msgs), 2)
	be.Equal(t, src.archived, []string{"m1", "m3"})

	got, err := f.accounts.FindByID(f.account.ID)
	be.Err(t, err, nil)
	be.True(t, got.LastSyncTime.Equal(syncNow))
}

func TestSyncListFailureStillAdvances(t *testing.T) {
	f := newFixture(t)
	last := syncNow.Add(-10 * time.Minute)
	be.Err(t, f.accounts.UpdateLastSyncTime(f.account.ID, last), nil)
	f.account.LastSyncTime = &last

	src := &fakeSource{listErr: errors.New("connection reset")}
	be.Err(t, newSync(f, src).SyncAccount(context.Background(), f.account), nil)

	be.True(t, src.since[0].Equal(last))
	got, err := f.accounts.FindByID(f.account.ID)
	be.Err(t, err, nil)
	be.True(t, got.LastSyncTime.Equal(syncNow))
}

func TestSyncFullPageStillAdvances(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{
		ids:      []string{"m1", "m2"},
		messages: map[string]*emaildomain.RawMessage{"m1": rawMessage("m1", "a"), "m2": rawMessage("m2", "b")},
	}

	be.Err(t, newSync(f, src, WithPageSize(2)).SyncAccount(context.Background(), f.account), nil)

	got, err := f.accounts.FindByID(f.account.ID)
	be.Err(t, err, nil)
	be.True(t, got.LastSyncTime.Equal(syncNow))
}

func TestSyncWindowMovesWhenArchiveKeepsFailing(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{
		ids:      []string{"m1", "m2"},
		messages: map[string]*emaildomain.RawMessage{"m1": rawMessage("m1", "a"), "m2": rawMessage("m2", "b")},
		archErr:  errors.New("insufficient scope"),
	}

	now := syncNow
	svc := newSync(f, src, WithPageSize(2), WithClock(func() time.Time { return now }))
	for run := 0; run < 5; run++ {
		be.Err(t, svc.SyncAccount(context.Background(), f.account), nil)

		got, err := f.accounts.FindByID(f.account.ID)
		be.Err(t, err, nil)
		be.True(t, got.LastSyncTime.Equal(now))
		now = now.Add(time.Hour)
	}

	be.Equal(t, len(src.since), 5)
	be.True(t, src.since[0].Equal(syncNow.Add(-24*time.Hour)))
	for i := 1; i < len(src.since); i++ {
		be.True(t, src.since[i].Equal(syncNow.Add(time.Duration(i-1)*time.Hour)))
	}

	// Stored but unarchived messages are archived again on every run.
	be.Equal(t, len(src.archived), 10)
	msgs, err := f.messages.FindByUser(f.user.ID, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(msgs), 2)
	for _, m := range msgs {
		be.True(t, !m.IsArchived)
	}
}

func TestSyncRetriesArchiveForStoredMessages(t *testing.T) {
	f := newFixture(t)
	src := &fakeSource{
		ids:      []string{"m1"},
		messages: map[string]*emaildomain.RawMessage{"m1": rawMessage("m1", "a")},
		archErr:  errors.New("503 unavailable"),
	}
	svc := newSync(f, src)

	be.Err(t, svc.SyncAccount(context.Background(), f.account), nil)
	msgs, err := f.messages.FindByUser(f.user.ID, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(msgs), 1)
	be.True(t, !msgs[0].IsArchived)

	src.archErr = nil
	be.Err(t, svc.SyncAccount(context.Background(), f.account), nil)
	got, err := f.messages.FindByID(msgs[0].ID)
	be.Err(t, err, nil)
	be.True(t, got.IsArchived)
	be.Equal(t, src.archived, []string{"m1", "m1"})

	// Once archived it is left alone.
	be.Err(t, svc.SyncAccount(context.Background(), f.account), nil)
	be.Equal(t, len(src.archived), 2)
}

func TestSyncCancelledMidBatchKeepsWindow(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*emaildomain.RawMessage{
			"m1": rawMessage("m1", "a"), "m2": rawMessage("m2", "b"), "m3": rawMessage("m3", "c"),
		},
		onFetch: func(string) { cancel() },
	}

	err := newSync(f, src).SyncAccount(ctx, f.account)
	be.Err(t, err, context.Canceled)

	got, err := f.accounts.FindByID(f.account.ID)
	be.Err(t, err, nil)
	be.True(t, got.LastSyncTime == nil)
	be.True(t, f.account.LastSyncTime == nil)

	for _, id := range []string{"m2", "m3"} {
		m, err := f.messages.FindByRemoteID(f.account.ID, id)
		be.Err(t, err, nil)
		be.True(t, m == nil)
	}

	// The next run lists the same window again and picks up the rest.
	src.onFetch = nil
	be.Err(t, newSync(f, src).SyncAccount(context.Background(), f.account), nil)
	be.True(t, src.since[1].Equal(src.since[0]))
	msgs, err := f.messages.FindByUser(f.user.ID, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(msgs), 3)
}

func TestSyncOpenFailureKeepsLastSync(t *testing.T) {
	f := newFixture(t)
	svc := NewSyncUsecase(f.accounts, f.messages, fakeOpener{err: errors.New("no provider")},
		NewExtractor(&stubLLM{}, zap.NewNop()),
		NewEnrichmentService(&stubLLM{}, f.categories, f.messages, zap.NewNop()),
		zap.NewNop(), WithClock(func() time.Time { return syncNow }))

	be.Err(t, svc.SyncAccount(context.Background(), f.account), "open mailbox")
	got, err := f.accounts.FindByID(f.account.ID)
	be.Err(t, err, nil)
	be.True(t, got.LastSyncTime == nil)

	// SyncAll logs the failure and carries on
	be.Err(t, svc.SyncAll(context.Background()), nil)
}

func TestRetryDegraded(t *testing.T) {
	f := newFixture(t)
	m := &emaildomain.Message{RemoteID: "r1", AccountID: f.account.ID, UserID: f.user.ID, Content: "x"}
	be.Err(t, f.messages.Create(m), nil)
	be.Err(t, f.messages.SaveEnrichment(m.ID, repository.EnrichmentUpdate{Status: emaildomain.EnrichmentDegraded}), nil)

	llm := &stubLLM{summary: "ok", classify: "None", link: "None"}
	svc := NewSyncUsecase(f.accounts, f.messages, fakeOpener{},
		NewExtractor(llm, zap.NewNop()),
		NewEnrichmentService(llm, f.categories, f.messages, zap.NewNop()),
		zap.NewNop())

	be.Equal(t, svc.RetryDegraded(context.Background(), 10), 1)
	got, err := f.messages.FindByID(m.ID)
	be.Err(t, err, nil)
	be.Equal(t, got.EnrichmentStatus, emaildomain.EnrichmentDone)
}
