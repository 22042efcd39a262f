package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/role"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/vote"
	jwtpkg "github.com/bitcoindistrict/bookclub-api/internal/platform/jwt"
	"github.com/bitcoindistrict/bookclub-api/internal/worker"
)

type testBookRepo struct {
	mu     sync.Mutex
	books  map[int64]*book.Book
	nextID int64
}

func newTestBookRepo() *testBookRepo {
	return &testBookRepo{books: make(map[int64]*book.Book), nextID: 1}
}

func (r *testBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	copyBook := *b
	r.books[b.ID] = &copyBook
	return nil
}

func (r *testBookRepo) Update(ctx context.Context, id int64, upd book.Update) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || b.IsDeleted {
		return nil, book.ErrBookNotFound
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.Description != nil {
		b.Description = upd.Description
	}
	if upd.BuyURL != nil {
		b.BuyURL = upd.BuyURL
	}
	if upd.ReadingDate != nil {
		b.ReadingDate = upd.ReadingDate
	}
	b.UpdatedAt = time.Now()
	copyBook := *b
	return &copyBook, nil
}

func (r *testBookRepo) SoftDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || b.IsDeleted {
		return book.ErrBookNotFound
	}
	b.IsDeleted = true
	return nil
}

func (r *testBookRepo) SetCoverPath(ctx context.Context, id int64, path *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || b.IsDeleted {
		return book.ErrBookNotFound
	}
	b.CoverPath = path
	return nil
}

func (r *testBookRepo) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || b.IsDeleted {
		return nil, book.ErrBookNotFound
	}
	copyBook := *b
	return &copyBook, nil
}

func (r *testBookRepo) listWhere(filter func(*book.Book) bool) []book.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []book.Book
	for _, b := range r.books {
		if !b.IsDeleted && filter(b) {
			res = append(res, *b)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Title < res[j].Title })
	return res
}

func (r *testBookRepo) ListAll(ctx context.Context) ([]book.Book, error) {
	return r.listWhere(func(*book.Book) bool { return true }), nil
}

func (r *testBookRepo) ListRead(ctx context.Context) ([]book.Book, error) {
	return r.listWhere(func(b *book.Book) bool { return b.ReadingDate != nil }), nil
}

func (r *testBookRepo) ListUnread(ctx context.Context) ([]book.Book, error) {
	return r.listWhere(func(b *book.Book) bool { return b.ReadingDate == nil }), nil
}

func (r *testBookRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.books)
}

type testPollRepo struct {
	mu           sync.Mutex
	bookRepo     *testBookRepo
	polls        map[int64]*poll.Poll
	opts         map[int64][]poll.Option
	nextPollID   int64
	nextOptionID int64
}

func newTestPollRepo(bookRepo *testBookRepo) *testPollRepo {
	return &testPollRepo{
		bookRepo:   bookRepo,
		polls:      make(map[int64]*poll.Poll),
		opts:       make(map[int64][]poll.Option),
		nextPollID: 1, nextOptionID: 1,
	}
}

func (r *testPollRepo) seed(p *poll.Poll) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextPollID
	r.nextPollID++
	p.CreatedAt = time.Now()
	copyPoll := *p
	r.polls[p.ID] = &copyPoll
	return p.ID
}

func (r *testPollRepo) seedOption(pollID, bookID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := poll.Option{ID: r.nextOptionID, PollID: pollID, BookID: bookID, CreatedAt: time.Now()}
	r.nextOptionID++
	r.opts[pollID] = append(r.opts[pollID], o)
}

func (r *testPollRepo) Create(ctx context.Context, p *poll.Poll) error {
	r.seed(p)
	return nil
}

func (r *testPollRepo) GetByID(ctx context.Context, id int64) (*poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, poll.ErrPollNotFound
	}
	copyPoll := *p
	return &copyPoll, nil
}

func (r *testPollRepo) ListActive(ctx context.Context, now time.Time) ([]poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []poll.Poll{}
	for _, p := range r.polls {
		if p.OpenAt(now) {
			res = append(res, *p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ExpiresAt.Before(res[j].ExpiresAt) })
	return res, nil
}

func (r *testPollRepo) ListAll(ctx context.Context) ([]poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []poll.Poll{}
	for _, p := range r.polls {
		res = append(res, *p)
	}
	return res, nil
}

func (r *testPollRepo) AddOptions(ctx context.Context, pollID int64, bookIDs []int64) ([]poll.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[pollID]; !ok {
		return nil, poll.ErrPollNotFound
	}

	existing := make(map[int64]bool)
	for _, o := range r.opts[pollID] {
		existing[o.BookID] = true
	}

	var added []poll.Option
	for _, bookID := range bookIDs {
		if _, err := r.bookRepo.GetByID(ctx, bookID); err != nil {
			return nil, err
		}
		if existing[bookID] {
			return nil, poll.ErrDuplicateOption
		}
		o := poll.Option{ID: r.nextOptionID, PollID: pollID, BookID: bookID, CreatedAt: time.Now()}
		r.nextOptionID++
		existing[bookID] = true
		added = append(added, o)
	}
	r.opts[pollID] = append(r.opts[pollID], added...)
	return added, nil
}

func (r *testPollRepo) ListOptions(ctx context.Context, pollID int64) ([]poll.OptionWithBook, error) {
	r.mu.Lock()
	opts := append([]poll.Option(nil), r.opts[pollID]...)
	r.mu.Unlock()

	var res []poll.OptionWithBook
	for _, o := range opts {
		b, err := r.bookRepo.GetByID(ctx, o.BookID)
		if err != nil {
			return nil, err
		}
		res = append(res, poll.OptionWithBook{Option: o, Book: *b})
	}
	return res, nil
}

type testVoteRepo struct {
	mu       sync.Mutex
	pollRepo *testPollRepo
	votes    map[int64]map[string]*vote.Vote
	nextID   int64
}

func newTestVoteRepo(pollRepo *testPollRepo) *testVoteRepo {
	return &testVoteRepo{
		pollRepo: pollRepo,
		votes:    make(map[int64]map[string]*vote.Vote),
		nextID:   1,
	}
}

func (r *testVoteRepo) Create(ctx context.Context, v *vote.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.votes[v.PollID] == nil {
		r.votes[v.PollID] = make(map[string]*vote.Vote)
	}
	if _, exists := r.votes[v.PollID][v.VoterID]; exists {
		return vote.ErrAlreadyVoted
	}
	v.ID = r.nextID
	r.nextID++
	v.CreatedAt = time.Now()
	copyVote := *v
	r.votes[v.PollID][v.VoterID] = &copyVote
	return nil
}

func (r *testVoteRepo) ForVoter(ctx context.Context, pollID int64, voterID string) (*vote.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[pollID][voterID]
	if !ok {
		return nil, nil
	}
	copyVote := *v
	return &copyVote, nil
}

func (r *testVoteRepo) ResultsByPoll(ctx context.Context, pollID int64) ([]vote.Result, error) {
	r.mu.Lock()
	counts := make(map[int64]int64)
	for _, v := range r.votes[pollID] {
		counts[v.BookID]++
	}
	r.mu.Unlock()

	r.pollRepo.mu.Lock()
	opts := append([]poll.Option(nil), r.pollRepo.opts[pollID]...)
	r.pollRepo.mu.Unlock()

	order := make(map[int64]int)
	var results []vote.Result
	for i, o := range opts {
		order[o.BookID] = i
		b, err := r.pollRepo.bookRepo.GetByID(ctx, o.BookID)
		if err != nil {
			return nil, err
		}
		results = append(results, vote.Result{
			BookID:     o.BookID,
			BookTitle:  b.Title,
			BookAuthor: b.Author,
			Votes:      counts[o.BookID],
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Votes != results[j].Votes {
			return results[i].Votes > results[j].Votes
		}
		return order[results[i].BookID] < order[results[j].BookID]
	})
	return results, nil
}

func (r *testVoteRepo) VotersByBook(ctx context.Context, pollID int64) (map[int64][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	voters := make(map[int64][]string)
	for voterID, v := range r.votes[pollID] {
		voters[v.BookID] = append(voters[v.BookID], voterID)
	}
	return voters, nil
}

func (r *testVoteRepo) PollState(ctx context.Context, pollID int64) (*vote.PollState, error) {
	r.pollRepo.mu.Lock()
	defer r.pollRepo.mu.Unlock()
	p, ok := r.pollRepo.polls[pollID]
	if !ok {
		return nil, vote.ErrPollNotFound
	}
	return &vote.PollState{IsActive: p.IsActive, ExpiresAt: p.ExpiresAt}, nil
}

func (r *testVoteRepo) HasOption(ctx context.Context, pollID, bookID int64) (bool, error) {
	r.pollRepo.mu.Lock()
	defer r.pollRepo.mu.Unlock()
	for _, o := range r.pollRepo.opts[pollID] {
		if o.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

type testRoleRepo struct {
	mu     sync.Mutex
	grants map[string]map[string]role.Grant
	nextID int64
}

func newTestRoleRepo() *testRoleRepo {
	return &testRoleRepo{grants: make(map[string]map[string]role.Grant), nextID: 1}
}

func (r *testRoleRepo) seedAdmin(userID string) {
	g := &role.Grant{UserID: userID, Role: role.BookClubAdmin}
	_ = r.Insert(context.Background(), g)
}

func (r *testRoleRepo) Insert(ctx context.Context, g *role.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grants[g.UserID] == nil {
		r.grants[g.UserID] = make(map[string]role.Grant)
	}
	if _, exists := r.grants[g.UserID][g.Role]; exists {
		return role.ErrAlreadyGranted
	}
	g.ID = r.nextID
	r.nextID++
	g.CreatedAt = time.Now()
	r.grants[g.UserID][g.Role] = *g
	return nil
}

func (r *testRoleRepo) Delete(ctx context.Context, userID, roleName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.grants[userID][roleName]; !exists {
		return role.ErrGrantNotFound
	}
	delete(r.grants[userID], roleName)
	return nil
}

func (r *testRoleRepo) Exists(ctx context.Context, userID, roleName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.grants[userID][roleName]
	return exists, nil
}

func (r *testRoleRepo) List(ctx context.Context, roleName string) ([]role.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []role.Grant
	for _, byRole := range r.grants {
		if g, ok := byRole[roleName]; ok {
			res = append(res, g)
		}
	}
	return res, nil
}

type testCoverStore struct{}

func (testCoverStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return name, err
}
func (testCoverStore) Remove(ctx context.Context, path string) error { return nil }
func (testCoverStore) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	return "http://covers.test/" + path
}

type testEnv struct {
	server   *httptest.Server
	bookRepo *testBookRepo
	pollRepo *testPollRepo
	voteRepo *testVoteRepo
	roleRepo *testRoleRepo
	jwtMgr   *jwtpkg.Manager
}

func setupServer(t *testing.T) (*testEnv, func()) {
	t.Helper()
	bookRepo := newTestBookRepo()
	pollRepo := newTestPollRepo(bookRepo)
	voteRepo := newTestVoteRepo(pollRepo)
	roleRepo := newTestRoleRepo()
	covers := testCoverStore{}

	bookSvc := book.NewService(bookRepo, covers)
	pollSvc := poll.NewService(pollRepo, covers)
	voteSvc := vote.NewService(voteRepo, covers)
	roleSvc := role.NewService(roleRepo)
	jwtMgr := jwtpkg.NewManager("secret", "test-issuer")
	voteCh := make(chan worker.VoteEvent, 100)

	server := httptest.NewServer(NewRouter(bookSvc, pollSvc, voteSvc, roleSvc, jwtMgr, voteCh, &sql.DB{}, ""))
	env := &testEnv{
		server:   server,
		bookRepo: bookRepo,
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		roleRepo: roleRepo,
		jwtMgr:   jwtMgr,
	}
	cleanup := func() {
		server.Close()
		close(voteCh)
	}
	return env, cleanup
}

func (e *testEnv) token(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := e.jwtMgr.Generate(userID, email, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (e *testEnv) createBook(t *testing.T, token, title, author string) book.Book {
	t.Helper()
	resp := e.doJSON(t, http.MethodPost, "/api/v1/books", token, createBookRequest{Title: title, Author: author})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create book status: %d", resp.StatusCode)
	}
	return decodeBody[book.Book](t, resp)
}

func (e *testEnv) createPoll(t *testing.T, token, title string, expiresAt time.Time) poll.Poll {
	t.Helper()
	resp := e.doJSON(t, http.MethodPost, "/api/v1/polls", token, createPollRequest{
		Title:     title,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create poll status: %d", resp.StatusCode)
	}
	return decodeBody[poll.Poll](t, resp)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestVotingRequiresAuth(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	resp := env.doJSON(t, http.MethodPost, "/api/v1/polls/1/vote", "", castVoteRequest{BookID: 1})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestAdminGateOnBookMutations(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	env.roleRepo.seedAdmin("admin-1")
	userToken := env.token(t, "user-1", "user@test.com")
	adminToken := env.token(t, "admin-1", "admin@test.com")

	resp := env.doJSON(t, http.MethodPost, "/api/v1/books", userToken,
		createBookRequest{Title: "The Bitcoin Standard", Author: "Saifedean Ammous"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp.StatusCode)
	}
	if env.bookRepo.count() != 0 {
		t.Fatalf("forbidden create must leave the catalog unchanged")
	}

	b := env.createBook(t, adminToken, "The Bitcoin Standard", "Saifedean Ammous")
	if b.ID == 0 {
		t.Fatalf("expected created book to carry an id")
	}

	// admin rights are a table row, not a claim: revoking works mid-session
	if err := env.roleRepo.Delete(context.Background(), "admin-1", role.BookClubAdmin); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	resp = env.doJSON(t, http.MethodPost, "/api/v1/books", adminToken,
		createBookRequest{Title: "Broken Money", Author: "Lyn Alden"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 after revocation, got %d", resp.StatusCode)
	}
}

func TestBookClubVotingFlow(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	env.roleRepo.seedAdmin("admin-1")
	adminToken := env.token(t, "admin-1", "admin@test.com")
	voterToken := env.token(t, "voter-1", "voter@test.com")

	b1 := env.createBook(t, adminToken, "The Bitcoin Standard", "Saifedean Ammous")
	b2 := env.createBook(t, adminToken, "Broken Money", "Lyn Alden")

	p := env.createPoll(t, adminToken, "September read", time.Now().Add(time.Hour))

	resp := env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(p.ID)+"/options", adminToken,
		addOptionsRequest{BookIDs: []int64{b1.ID, b2.ID}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add options status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(p.ID)+"/options", adminToken,
		addOptionsRequest{BookIDs: []int64{b1.ID}})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate option, got %d", resp.StatusCode)
	}
	errBody := decodeBody[map[string]string](t, resp)
	if errBody["error"] != "duplicate_option" {
		t.Fatalf("expected duplicate_option code, got %q", errBody["error"])
	}

	resp = env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(p.ID)+"/vote", voterToken,
		castVoteRequest{BookID: b1.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("cast vote status: %d", resp.StatusCode)
	}
	cast := decodeBody[vote.Vote](t, resp)
	if cast.BookID != b1.ID || cast.VoterID != "voter-1" {
		t.Fatalf("unexpected vote %+v", cast)
	}

	resp = env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(p.ID)+"/vote", voterToken,
		castVoteRequest{BookID: b2.ID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for second vote, got %d", resp.StatusCode)
	}
	errBody = decodeBody[map[string]string](t, resp)
	if errBody["error"] != "already_voted" {
		t.Fatalf("expected already_voted code, got %q", errBody["error"])
	}

	resp = env.doJSON(t, http.MethodGet, "/api/v1/polls/"+itoa(p.ID)+"/vote", voterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("my vote status: %d", resp.StatusCode)
	}
	mine := decodeBody[map[string]*vote.Vote](t, resp)
	if mine["vote"] == nil || mine["vote"].BookID != b1.ID {
		t.Fatalf("expected first vote to stand, got %+v", mine["vote"])
	}

	// public results: counts only, first book on top, no voter identities
	resp = env.doJSON(t, http.MethodGet, "/api/v1/polls/"+itoa(p.ID)+"/results", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public results status: %d", resp.StatusCode)
	}
	public := decodeBody[pollResultsResponse](t, resp)
	if public.TotalVotes != 1 || len(public.Results) != 2 {
		t.Fatalf("unexpected public results %+v", public)
	}
	if public.Results[0].BookID != b1.ID || public.Results[0].Votes != 1 {
		t.Fatalf("expected the voted book first, got %+v", public.Results[0])
	}
	if public.Results[1].Votes != 0 {
		t.Fatalf("expected the zero-vote option to still be listed")
	}
	for _, res := range public.Results {
		if len(res.Voters) != 0 {
			t.Fatalf("public view leaked voter identities: %+v", res)
		}
	}

	// same route with an admin token includes the voters
	resp = env.doJSON(t, http.MethodGet, "/api/v1/polls/"+itoa(p.ID)+"/results", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin results status: %d", resp.StatusCode)
	}
	admin := decodeBody[pollResultsResponse](t, resp)
	if admin.TotalVotes != public.TotalVotes {
		t.Fatalf("counts must not depend on the view")
	}
	if len(admin.Results[0].Voters) != 1 || admin.Results[0].Voters[0] != "voter-1" {
		t.Fatalf("expected voter identities in admin view, got %+v", admin.Results[0].Voters)
	}
}

func TestClosedPollRejectsVotes(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	b := &book.Book{Title: "The Blocksize War", Author: "Jonathan Bier"}
	if err := env.bookRepo.Create(context.Background(), b); err != nil {
		t.Fatalf("seed book: %v", err)
	}
	pollID := env.pollRepo.seed(&poll.Poll{
		Title:     "Expired poll",
		ExpiresAt: time.Now().Add(-time.Minute),
		IsActive:  true,
	})
	env.pollRepo.seedOption(pollID, b.ID)

	voterToken := env.token(t, "voter-1", "voter@test.com")
	resp := env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(pollID)+"/vote", voterToken,
		castVoteRequest{BookID: b.ID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for expired poll, got %d", resp.StatusCode)
	}
	errBody := decodeBody[map[string]string](t, resp)
	if errBody["error"] != "poll_closed" {
		t.Fatalf("expected poll_closed code, got %q", errBody["error"])
	}

	// the expired poll also drops out of the active listing
	resp = env.doJSON(t, http.MethodGet, "/api/v1/polls", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list polls status: %d", resp.StatusCode)
	}
	active := decodeBody[[]poll.Poll](t, resp)
	if len(active) != 0 {
		t.Fatalf("expected no active polls, got %d", len(active))
	}
}

func TestResultsForUnknownPoll(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	resp := env.doJSON(t, http.MethodGet, "/api/v1/polls/404/results", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDashboard(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	env.roleRepo.seedAdmin("admin-1")
	adminToken := env.token(t, "admin-1", "admin@test.com")
	voterToken := env.token(t, "voter-1", "voter@test.com")

	b := env.createBook(t, adminToken, "Mastering Bitcoin", "Andreas Antonopoulos")
	p := env.createPoll(t, adminToken, "October read", time.Now().Add(time.Hour))
	resp := env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(p.ID)+"/options", adminToken,
		addOptionsRequest{BookIDs: []int64{b.ID}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add options status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/polls/"+itoa(p.ID)+"/vote", voterToken,
		castVoteRequest{BookID: b.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("cast vote status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodGet, "/api/v1/bookclub", voterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status: %d", resp.StatusCode)
	}
	entries := decodeBody[[]dashboardEntry](t, resp)
	if len(entries) != 1 {
		t.Fatalf("expected one dashboard entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Poll.ID != p.ID || entry.TotalVotes != 1 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.MyVote == nil || entry.MyVote.BookID != b.ID {
		t.Fatalf("expected own vote in dashboard, got %+v", entry.MyVote)
	}
	for _, res := range entry.Results {
		if len(res.Voters) != 0 {
			t.Fatalf("dashboard must use the public projection")
		}
	}
}
