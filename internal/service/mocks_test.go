package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/arefin/flowboard/internal/apperror"
	"github.com/arefin/flowboard/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================
//
// The fakes below are hand-written in-memory implementations of the
// repository interfaces. No mock framework: what each fake does is right
// here on the page, and tests inject failures by setting an err field.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- users ---

type fakeUserRepo struct {
	users   map[string]*model.User
	byEmail map[string]*model.User
	nextID  int

	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
		nextID:  1,
	}
}

// add seeds a user directly, bypassing Create's conflict check.
func (f *fakeUserRepo) add(name, email string) *model.User {
	u := &model.User{
		ID:    fmt.Sprintf("user-%d", f.nextID),
		Name:  name,
		Email: strings.ToLower(email),
	}
	f.nextID++
	f.users[u.ID] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	email := strings.ToLower(user.Email)
	if _, exists := f.byEmail[email]; exists {
		return apperror.Conflict("email is already registered")
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.Email = email
	copied := *user
	f.users[user.ID] = &copied
	f.byEmail[email] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	copied := *u
	return &copied, nil
}

// --- boards ---

type fakeBoardRepo struct {
	users   *fakeUserRepo
	boards  map[string]*model.Board
	members map[string][]string // boardID -> member user IDs, insertion order
	nextID  int
}

func newFakeBoardRepo(users *fakeUserRepo) *fakeBoardRepo {
	return &fakeBoardRepo{
		users:   users,
		boards:  make(map[string]*model.Board),
		members: make(map[string][]string),
		nextID:  1,
	}
}

func (f *fakeBoardRepo) Create(ctx context.Context, board *model.Board) error {
	board.ID = fmt.Sprintf("board-%d", f.nextID)
	f.nextID++
	copied := *board
	f.boards[board.ID] = &copied
	f.members[board.ID] = []string{board.OwnerID}
	return nil
}

func (f *fakeBoardRepo) GetByID(ctx context.Context, id string) (*model.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, apperror.NotFound("board", id)
	}
	copied := *b
	copied.Members = nil
	for _, uid := range f.members[id] {
		if u, ok := f.users.users[uid]; ok {
			copied.Members = append(copied.Members, *u)
		}
	}
	return &copied, nil
}

func (f *fakeBoardRepo) ListForUser(ctx context.Context, userID string) ([]model.Board, error) {
	var out []model.Board
	for id, b := range f.boards {
		for _, uid := range f.members[id] {
			if uid == userID {
				out = append(out, *b)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBoardRepo) Update(ctx context.Context, board *model.Board) error {
	if _, ok := f.boards[board.ID]; !ok {
		return apperror.NotFound("board", board.ID)
	}
	copied := *board
	copied.Members = nil
	f.boards[board.ID] = &copied
	return nil
}

func (f *fakeBoardRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.boards[id]; !ok {
		return apperror.NotFound("board", id)
	}
	delete(f.boards, id)
	delete(f.members, id)
	return nil
}

func (f *fakeBoardRepo) AddMember(ctx context.Context, boardID, userID string) error {
	for _, uid := range f.members[boardID] {
		if uid == userID {
			return apperror.Conflict("user is already a member of this board")
		}
	}
	f.members[boardID] = append(f.members[boardID], userID)
	return nil
}

func (f *fakeBoardRepo) RemoveMember(ctx context.Context, boardID, userID string) error {
	for i, uid := range f.members[boardID] {
		if uid == userID {
			f.members[boardID] = append(f.members[boardID][:i], f.members[boardID][i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("member", userID)
}

// --- lists ---

type fakeListRepo struct {
	lists  map[string]*model.List
	nextID int
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: make(map[string]*model.List), nextID: 1}
}

func (f *fakeListRepo) Create(ctx context.Context, list *model.List) error {
	list.ID = fmt.Sprintf("list-%d", f.nextID)
	f.nextID++
	copied := *list
	f.lists[list.ID] = &copied
	return nil
}

func (f *fakeListRepo) GetByID(ctx context.Context, id string) (*model.List, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, apperror.NotFound("list", id)
	}
	copied := *l
	return &copied, nil
}

func (f *fakeListRepo) ListForBoard(ctx context.Context, boardID string) ([]model.List, error) {
	var out []model.List
	for _, l := range f.lists {
		if l.BoardID == boardID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeListRepo) Update(ctx context.Context, list *model.List) error {
	if _, ok := f.lists[list.ID]; !ok {
		return apperror.NotFound("list", list.ID)
	}
	copied := *list
	f.lists[list.ID] = &copied
	return nil
}

func (f *fakeListRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.lists[id]; !ok {
		return apperror.NotFound("list", id)
	}
	delete(f.lists, id)
	return nil
}

// --- tasks ---

type fakeTaskRepo struct {
	lists     *fakeListRepo
	users     *fakeUserRepo
	tasks     map[string]*model.Task
	assignees map[string][]string // taskID -> user IDs
	nextID    int
}

func newFakeTaskRepo(lists *fakeListRepo, users *fakeUserRepo) *fakeTaskRepo {
	return &fakeTaskRepo{
		lists:     lists,
		users:     users,
		tasks:     make(map[string]*model.Task),
		assignees: make(map[string][]string),
		nextID:    1,
	}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task, assigneeIDs ...string) error {
	task.ID = fmt.Sprintf("task-%d", f.nextID)
	f.nextID++
	copied := *task
	f.tasks[task.ID] = &copied
	f.assignees[task.ID] = append([]string(nil), assigneeIDs...)
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperror.NotFound("task", id)
	}
	copied := *t
	copied.Assignees = nil
	for _, uid := range f.assignees[id] {
		if u, ok := f.users.users[uid]; ok {
			copied.Assignees = append(copied.Assignees, *u)
		}
	}
	return &copied, nil
}

func (f *fakeTaskRepo) ListForList(ctx context.Context, listID string) ([]model.Task, error) {
	var out []model.Task
	for id, t := range f.tasks {
		if t.ListID == listID {
			got, _ := f.GetByID(ctx, id)
			out = append(out, *got)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *model.Task) error {
	existing, ok := f.tasks[task.ID]
	if !ok {
		return apperror.NotFound("task", task.ID)
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.Position = task.Position
	return nil
}

func (f *fakeTaskRepo) Move(ctx context.Context, taskID, targetListID string, position int) error {
	task, ok := f.tasks[taskID]
	if !ok {
		return apperror.NotFound("task", taskID)
	}
	current, err := f.lists.GetByID(ctx, task.ListID)
	if err != nil {
		return err
	}
	target, err := f.lists.GetByID(ctx, targetListID)
	if err != nil {
		return err
	}
	if current.BoardID != target.BoardID {
		return apperror.ValidationFailed("targetListId", "target list belongs to a different board")
	}
	task.ListID = targetListID
	task.Position = position
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return apperror.NotFound("task", id)
	}
	delete(f.tasks, id)
	delete(f.assignees, id)
	return nil
}

func (f *fakeTaskRepo) AddAssignee(ctx context.Context, taskID, userID string) (bool, error) {
	for _, uid := range f.assignees[taskID] {
		if uid == userID {
			return false, nil
		}
	}
	f.assignees[taskID] = append(f.assignees[taskID], userID)
	return true, nil
}

// --- activity ---

type fakeActivityRepo struct {
	entries []model.ActivityEntry

	createErr error
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (f *fakeActivityRepo) Create(ctx context.Context, entry *model.ActivityEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = fmt.Sprintf("entry-%d", len(f.entries)+1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) ListForBoard(ctx context.Context, boardID string) ([]model.ActivityEntry, error) {
	var out []model.ActivityEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].BoardID == boardID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

// lastAction returns the action text of the most recent entry, or "".
func (f *fakeActivityRepo) lastAction() string {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

// --- notifier ---

type notifierCall struct {
	event   string
	boardID string
	// entriesAtSend is how many activity entries existed when the event
	// fired, captured so tests can assert entry-before-event ordering.
	entriesAtSend int
}

// fakeNotifier records every event. It holds a pointer to the activity fake
// so each call can snapshot the log length at send time.
type fakeNotifier struct {
	mu       sync.Mutex
	activity *fakeActivityRepo
	calls    []notifierCall
}

func newFakeNotifier(activity *fakeActivityRepo) *fakeNotifier {
	return &fakeNotifier{activity: activity}
}

func (f *fakeNotifier) TaskCreated(boardID string, task *model.Task) {
	f.recordCall("taskCreated", boardID)
}

func (f *fakeNotifier) ActivityAdded(boardID string, entry *model.ActivityEntry) {
	f.recordCall("activityAdded", boardID)
}

func (f *fakeNotifier) recordCall(event, boardID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifierCall{
		event:         event,
		boardID:       boardID,
		entriesAtSend: len(f.activity.entries),
	})
}

func (f *fakeNotifier) callsFor(event string) []notifierCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notifierCall
	for _, c := range f.calls {
		if c.event == event {
			out = append(out, c)
		}
	}
	return out
}

// requireEvents fails the test unless exactly the given events fired, in
// order.
func (f *fakeNotifier) requireEvents(t *testing.T, events ...string) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) != len(events) {
		t.Fatalf("got %d notifier calls %v, want %d %v", len(f.calls), f.calls, len(events), events)
	}
	for i, event := range events {
		if f.calls[i].event != event {
			t.Errorf("call %d = %q, want %q", i, f.calls[i].event, event)
		}
	}
}

// --- full fixture ---

// fixture bundles every fake plus the services wired over them, the way the
// server wires the real thing.
type fixture struct {
	users    *fakeUserRepo
	boards   *fakeBoardRepo
	lists    *fakeListRepo
	tasks    *fakeTaskRepo
	activity *fakeActivityRepo
	notifier *fakeNotifier

	boardSvc    *BoardService
	listSvc     *ListService
	taskSvc     *TaskService
	activitySvc *ActivityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	boards := newFakeBoardRepo(users)
	lists := newFakeListRepo()
	tasks := newFakeTaskRepo(lists, users)
	activity := newFakeActivityRepo()
	notifier := newFakeNotifier(activity)
	logger := testLogger()

	return &fixture{
		users:    users,
		boards:   boards,
		lists:    lists,
		tasks:    tasks,
		activity: activity,
		notifier: notifier,

		boardSvc:    NewBoardService(boards, users, activity, notifier, logger),
		listSvc:     NewListService(lists, boards, users, activity, notifier, logger),
		taskSvc:     NewTaskService(tasks, lists, boards, users, activity, notifier, logger),
		activitySvc: NewActivityService(activity, boards, logger),
	}
}
