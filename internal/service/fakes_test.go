package service

import (
	"code4u_backend/internal/model"
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// 内存实现，供服务层测试使用

type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*model.User
	completed  map[string][]string
	activities []*model.UserActivity
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}, completed: map[string][]string{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Updates(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "display_name":
			u.DisplayName = v.(string)
		case "photo_url":
			u.PhotoURL = v.(string)
		case "role":
			u.Role = v.(model.UserRole)
		case "disabled":
			u.Disabled = v.(bool)
		case "last_login":
			u.LastLogin = v.(time.Time)
		case "last_seen":
			u.LastSeen = v.(time.Time)
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(ctx context.Context, id string) error {
	return r.Updates(ctx, id, map[string]interface{}{"last_seen": time.Now()})
}

func (r *fakeUserRepo) RecordLevelCompletion(_ context.Context, userID, levelID string, points int, activity *model.UserActivity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.completed[userID] {
		if id == levelID {
			return false, nil
		}
	}
	r.completed[userID] = append(r.completed[userID], levelID)
	if u, ok := r.users[userID]; ok {
		u.Points += points
		u.Level++
	}
	if activity != nil {
		r.activities = append(r.activities, activity)
	}
	return true, nil
}

func (r *fakeUserRepo) CompletedLevels(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.completed[userID]...), nil
}

func (r *fakeUserRepo) UsersWithCompletedLevels(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, levels := range r.completed {
		if len(levels) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeUserRepo) FindTopByPoints(_ context.Context, limit int) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []model.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Points > users[j].Points })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int, _ UserFilter) ([]model.User, int64, error) {
	users, _ := r.FindTopByPoints(context.Background(), len(r.users))
	return users, int64(len(users)), nil
}

// setCompleted 直接写入扁平完成集合
func (r *fakeUserRepo) setCompleted(userID string, levelIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed[userID] = append([]string(nil), levelIDs...)
}

type fakeJourneyRepo struct {
	journeys []model.Journey
	err      error
}

func (r *fakeJourneyRepo) List(_ context.Context) ([]model.Journey, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]model.Journey(nil), r.journeys...), nil
}

func (r *fakeJourneyRepo) FindByID(_ context.Context, id string) (*model.Journey, error) {
	for i := range r.journeys {
		if r.journeys[i].ID == id {
			j := r.journeys[i]
			return &j, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeJourneyRepo) Save(_ context.Context, journey *model.Journey) error {
	for i := range r.journeys {
		if r.journeys[i].ID == journey.ID {
			r.journeys[i] = *journey
			return nil
		}
	}
	r.journeys = append(r.journeys, *journey)
	return nil
}

func (r *fakeJourneyRepo) Delete(_ context.Context, id string) error {
	for i := range r.journeys {
		if r.journeys[i].ID == id {
			r.journeys = append(r.journeys[:i], r.journeys[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeLevelRepo struct {
	levels map[string]model.Level
}

func newFakeLevelRepo(levels ...model.Level) *fakeLevelRepo {
	r := &fakeLevelRepo{levels: map[string]model.Level{}}
	for _, l := range levels {
		r.levels[l.ID] = l
	}
	return r
}

func (r *fakeLevelRepo) FindByID(_ context.Context, id string) (*model.Level, error) {
	l, ok := r.levels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *fakeLevelRepo) FindByIDs(_ context.Context, ids []string) ([]model.Level, error) {
	var out []model.Level
	for _, id := range ids {
		if l, ok := r.levels[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLevelRepo) List(_ context.Context, category string) ([]model.Level, error) {
	var out []model.Level
	for _, l := range r.levels {
		if category == "" || l.Category == category {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakeLevelRepo) Save(_ context.Context, level *model.Level) error {
	r.levels[level.ID] = *level
	return nil
}

func (r *fakeLevelRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.levels[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.levels, id)
	return nil
}

func (r *fakeLevelRepo) ExistingIDs(_ context.Context, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := r.levels[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *fakeLevelRepo) CreateInBatches(_ context.Context, levels []model.Level, _ int) error {
	for _, l := range levels {
		if _, ok := r.levels[l.ID]; !ok {
			r.levels[l.ID] = l
		}
	}
	return nil
}

type fakeProgressRepo struct {
	mu       sync.Mutex
	progress map[string]*model.JourneyProgress
	writes   int
	addErr   error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{progress: map[string]*model.JourneyProgress{}}
}

func progressKey(userID, journeyID string) string {
	return userID + "/" + journeyID
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID string) ([]model.JourneyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.JourneyProgress
	for _, p := range r.progress {
		if p.UserID == userID {
			cp := *p
			cp.CompletedLevels = append([]string(nil), p.CompletedLevels...)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Find(_ context.Context, userID, journeyID string) (*model.JourneyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[progressKey(userID, journeyID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.CompletedLevels = append([]string(nil), p.CompletedLevels...)
	return &cp, nil
}

func (r *fakeProgressRepo) start(userID, journeyID string, now time.Time) bool {
	key := progressKey(userID, journeyID)
	p, ok := r.progress[key]
	if !ok {
		t := now
		r.progress[key] = &model.JourneyProgress{UserID: userID, JourneyID: journeyID, StartedAt: &t, LastAccessedAt: &t}
		return true
	}
	if p.StartedAt == nil {
		t := now
		p.StartedAt = &t
	}
	t := now
	p.LastAccessedAt = &t
	return false
}

func (r *fakeProgressRepo) addLevels(userID, journeyID string, levelIDs []string, now time.Time) {
	key := progressKey(userID, journeyID)
	p, ok := r.progress[key]
	if !ok {
		p = &model.JourneyProgress{UserID: userID, JourneyID: journeyID}
		r.progress[key] = p
	}
	for _, id := range levelIDs {
		if !p.HasCompletedLevel(id) {
			p.CompletedLevels = append(p.CompletedLevels, id)
		}
	}
	t := now
	p.LastAccessedAt = &t
}

func (r *fakeProgressRepo) Start(_ context.Context, userID, journeyID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	return r.start(userID, journeyID, now), nil
}

func (r *fakeProgressRepo) AddLevels(_ context.Context, userID, journeyID string, levelIDs []string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	r.writes++
	r.addLevels(userID, journeyID, levelIDs, now)
	return nil
}

func (r *fakeProgressRepo) ApplySync(_ context.Context, userID string, patches []JourneySyncPatch, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	for _, patch := range patches {
		if patch.Start {
			r.start(userID, patch.JourneyID, now)
		}
		if len(patch.LevelIDs) > 0 {
			r.addLevels(userID, patch.JourneyID, patch.LevelIDs, now)
		}
	}
	return nil
}

func (r *fakeProgressRepo) MarkCompleted(_ context.Context, userID, journeyID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[progressKey(userID, journeyID)]
	if !ok || p.Completed {
		return false, nil
	}
	r.writes++
	t := now
	p.Completed = true
	p.CompletedAt = &t
	return true, nil
}

func (r *fakeProgressRepo) Import(_ context.Context, progress model.JourneyProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	key := progressKey(progress.UserID, progress.JourneyID)
	p, ok := r.progress[key]
	if !ok {
		cp := progress
		cp.CompletedLevels = append([]string(nil), progress.CompletedLevels...)
		r.progress[key] = &cp
		return nil
	}
	if p.StartedAt == nil {
		p.StartedAt = progress.StartedAt
	}
	if progress.Completed && !p.Completed {
		p.Completed = true
		p.CompletedAt = progress.CompletedAt
	}
	for _, id := range progress.CompletedLevels {
		if !p.HasCompletedLevel(id) {
			p.CompletedLevels = append(p.CompletedLevels, id)
		}
	}
	return nil
}

type fakeBadgeRepo struct {
	mu         sync.Mutex
	badges     map[string]model.Badge
	held       map[string][]string
	activities []*model.UserActivity
	listErr    error
}

func newFakeBadgeRepo(badges ...model.Badge) *fakeBadgeRepo {
	r := &fakeBadgeRepo{badges: map[string]model.Badge{}, held: map[string][]string{}}
	for _, b := range badges {
		r.badges[b.ID] = b
	}
	return r
}

func (r *fakeBadgeRepo) List(_ context.Context) ([]model.Badge, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Badge
	for _, b := range r.badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBadgeRepo) FindByID(_ context.Context, id string) (*model.Badge, error) {
	b, ok := r.badges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *fakeBadgeRepo) Save(_ context.Context, badge *model.Badge) error {
	r.badges[badge.ID] = *badge
	return nil
}

func (r *fakeBadgeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.badges[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.badges, id)
	return nil
}

func (r *fakeBadgeRepo) UserBadgeIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.held[userID]...), nil
}

func (r *fakeBadgeRepo) Award(_ context.Context, userID, badgeID string, activity *model.UserActivity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.held[userID] {
		if id == badgeID {
			return false, nil
		}
	}
	r.held[userID] = append(r.held[userID], badgeID)
	r.activities = append(r.activities, activity)
	return true, nil
}

type fakeActivityRepo struct {
	mu         sync.Mutex
	activities []model.UserActivity
}

func (r *fakeActivityRepo) Create(_ context.Context, activity *model.UserActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *fakeActivityRepo) Recent(_ context.Context, limit int) ([]model.UserActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]model.UserActivity(nil), r.activities...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeActivityRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.UserActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.UserActivity
	for _, a := range r.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) countType(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.activities {
		if a.Type == typ {
			n++
		}
	}
	return n
}

// testJourneys 两个旅程：fundamentals 包含 level-1..3，advanced 以 fundamentals 为前置
func testJourneys() []model.Journey {
	return []model.Journey{
		{ID: "fundamentals", Title: "Fundamentals", LevelIDs: []string{"level-1", "level-2", "level-3"}, BadgeID: "fundamentals-done", Order: 1},
		{ID: "advanced", Title: "Advanced", LevelIDs: []string{"level-adv-1"}, Prerequisites: []string{"fundamentals"}, Order: 2},
	}
}

type journeyFixture struct {
	users      *fakeUserRepo
	journeys   *fakeJourneyRepo
	levels     *fakeLevelRepo
	progress   *fakeProgressRepo
	badges     *fakeBadgeRepo
	activities *fakeActivityRepo
	service    *JourneyService
}

func newJourneyFixture(journeys ...model.Journey) *journeyFixture {
	if len(journeys) == 0 {
		journeys = testJourneys()
	}
	f := &journeyFixture{
		users:      newFakeUserRepo(&model.User{UUIDBase: model.UUIDBase{ID: "u1"}, DisplayName: "Ada", Level: 1}),
		journeys:   &fakeJourneyRepo{journeys: journeys},
		levels:     newFakeLevelRepo(),
		progress:   newFakeProgressRepo(),
		badges:     newFakeBadgeRepo(),
		activities: &fakeActivityRepo{},
	}
	badgeService := NewBadgeService(f.badges, f.users)
	f.service = NewJourneyService(f.journeys, f.levels, f.progress, f.users, f.activities, badgeService)
	return f
}
