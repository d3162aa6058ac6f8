// ABOUTME: Child profile repository with a per-user cached list.
// ABOUTME: The cache is kept most-recently-updated first and drives "not found" decisions.

package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/models"
)

type ProfileRepository struct {
	base

	mu        sync.Mutex
	cache     map[string][]*models.Profile
	listeners map[int]func(uid string)
	nextID    int
}

func NewProfileRepository(store docstore.Store, opts ...Option) *ProfileRepository {
	return &ProfileRepository{
		base:      newBase(store, opts),
		cache:     make(map[string][]*models.Profile),
		listeners: make(map[int]func(string)),
	}
}

// List fetches every profile for uid, replaces the cache, and returns the
// profiles most-recently-updated first. Never-edited profiles follow in
// creation order.
func (r *ProfileRepository) List(ctx context.Context, uid string) ([]*models.Profile, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	docs, err := r.store.List(ctx, profilesPath(uid), docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := r.decode(docs)

	r.replace(uid, profiles)
	return cloneProfiles(profiles), nil
}

// Create stores a new profile and adds it to the cached list. A live Watch
// may already have delivered it, so the splice is keyed by ID.
func (r *ProfileRepository) Create(ctx context.Context, uid string, in models.ProfileInput) (string, error) {
	if err := requireUser(uid); err != nil {
		return "", err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	fields := docstore.Fields(in.Fields())
	fields["createdAt"] = docstore.ServerTimestamp

	coll := profilesPath(uid)
	id, err := r.store.Create(ctx, coll, fields)
	if err != nil {
		return "", r.writeError("create", coll, err)
	}

	profile := r.readBack(ctx, uid, id, func() *models.Profile {
		return profileFromInput(id, in, time.Now().UTC(), nil)
	})

	r.upsert(uid, profile)

	r.log.Debug("profile created", "id", id)
	return id, nil
}

// Update writes every form field and a fresh updatedAt, then moves the
// profile to the front of the cached list.
func (r *ProfileRepository) Update(ctx context.Context, uid, id string, in models.ProfileInput) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	if err := checkID("profile", id); err != nil {
		return err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	fields := docstore.Fields(in.Fields())
	fields["updatedAt"] = docstore.ServerTimestamp

	docPath := docstore.Join(profilesPath(uid), id)
	if err := r.store.Update(ctx, docPath, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			r.evict(uid, id)
		}
		return r.writeError("update", docPath, err)
	}

	profile := r.readBack(ctx, uid, id, func() *models.Profile {
		created := time.Now().UTC()
		if old, ok := r.Find(uid, id); ok {
			created = old.CreatedAt
		}
		now := time.Now().UTC()
		return profileFromInput(id, in, created, &now)
	})
	r.upsert(uid, profile)
	return nil
}

// Delete removes the profile and its goals, favorites, and notes, then
// evicts it from the cache. The profile document goes last so a failed
// cascade leaves it visible for another attempt.
func (r *ProfileRepository) Delete(ctx context.Context, uid, id string) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	if err := checkID("profile", id); err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range childCollections {
		coll := childPath(uid, id, kind)
		g.Go(func() error {
			return r.clearCollection(gctx, coll)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	docPath := docstore.Join(profilesPath(uid), id)
	if err := r.store.Delete(ctx, docPath); err != nil {
		return r.writeError("delete", docPath, err)
	}

	r.evict(uid, id)
	r.log.Debug("profile deleted", "id", id)
	return nil
}

func (r *ProfileRepository) clearCollection(ctx context.Context, coll string) error {
	docs, err := r.store.List(ctx, coll, docstore.Query{})
	if err != nil {
		return r.writeError("delete", coll, err)
	}
	for _, doc := range docs {
		if err := r.store.Delete(ctx, doc.Path); err != nil {
			return r.writeError("delete", doc.Path, err)
		}
	}
	return nil
}

// Get fetches one profile from the store and refreshes its cache entry.
// A profile that no longer exists is evicted.
func (r *ProfileRepository) Get(ctx context.Context, uid, id string) (*models.Profile, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	if err := checkID("profile", id); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.store.Get(ctx, docstore.Join(profilesPath(uid), id))
	if errors.Is(err, docstore.ErrNotFound) {
		r.evict(uid, id)
		return nil, fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	profile, err := decodeProfile(doc)
	if err != nil {
		return nil, err
	}
	r.upsert(uid, profile)
	return cloneProfile(profile), nil
}

// Cached returns the last known profiles for uid without a store call.
func (r *ProfileRepository) Cached(uid string) []*models.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneProfiles(r.cache[uid])
}

// Find looks a profile up in the cache only.
func (r *ProfileRepository) Find(uid, id string) (*models.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.cache[uid] {
		if p.ID == id {
			return cloneProfile(p), true
		}
	}
	return nil, false
}

// Resolve finds a profile by full ID or a unique prefix of at least
// MinPrefixLength characters, refreshing the cache first.
func (r *ProfileRepository) Resolve(ctx context.Context, uid, prefix string) (*models.Profile, error) {
	profiles, err := r.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	id, err := matchPrefix(ids, prefix)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	p, _ := r.Find(uid, id)
	return p, nil
}

// Watch keeps the cache for uid in step with the store, including changes
// made by other processes. Unsubscribe to stop.
func (r *ProfileRepository) Watch(uid string) (*docstore.Subscription, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	return r.store.Subscribe(profilesPath(uid), docstore.Query{}, func(snap *docstore.Snapshot) {
		if snap.Err != nil {
			r.log.Warn("profile watch failed", "err", snap.Err)
			return
		}
		r.replace(uid, r.decode(snap.Docs))
	})
}

// OnChange registers fn to run whenever the cached list for any user
// changes. The returned func removes it.
func (r *ProfileRepository) OnChange(fn func(uid string)) (remove func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Forget drops the cached list for uid, as on sign-out.
func (r *ProfileRepository) Forget(uid string) {
	r.mu.Lock()
	delete(r.cache, uid)
	r.mu.Unlock()
	r.notify(uid)
}

func (r *ProfileRepository) readBack(ctx context.Context, uid, id string, fallback func() *models.Profile) *models.Profile {
	doc, err := r.store.Get(ctx, docstore.Join(profilesPath(uid), id))
	if err == nil {
		if p, err := decodeProfile(doc); err == nil {
			return p
		}
	}
	r.log.Debug("profile read-back failed, using local copy", "id", id, "err", err)
	return fallback()
}

func (r *ProfileRepository) replace(uid string, profiles []*models.Profile) {
	sortProfiles(profiles)
	r.mu.Lock()
	r.cache[uid] = profiles
	r.mu.Unlock()
	r.notify(uid)
}

func (r *ProfileRepository) upsert(uid string, profile *models.Profile) {
	r.mu.Lock()
	list := r.cache[uid]
	i := slices.IndexFunc(list, func(p *models.Profile) bool { return p.ID == profile.ID })
	if i >= 0 {
		list[i] = profile
	} else {
		list = append(list, profile)
	}
	sortProfiles(list)
	r.cache[uid] = list
	r.mu.Unlock()
	r.notify(uid)
}

func (r *ProfileRepository) evict(uid, id string) {
	r.mu.Lock()
	list := r.cache[uid]
	n := len(list)
	r.cache[uid] = slices.DeleteFunc(list, func(p *models.Profile) bool { return p.ID == id })
	changed := len(r.cache[uid]) != n
	r.mu.Unlock()
	if changed {
		r.notify(uid)
	}
}

func (r *ProfileRepository) notify(uid string) {
	r.mu.Lock()
	fns := make([]func(string), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(uid)
	}
}

func (r *ProfileRepository) decode(docs []*docstore.Document) []*models.Profile {
	profiles := make([]*models.Profile, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProfile(doc)
		if err != nil {
			r.log.Warn("skipping malformed profile", "path", doc.Path, "err", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func decodeProfile(doc *docstore.Document) (*models.Profile, error) {
	var p models.Profile
	if err := doc.Decode(&p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = doc.CreateTime
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return &p, nil
}

// sortProfiles orders by updatedAt descending; profiles never updated keep
// their relative order after all updated ones.
func sortProfiles(profiles []*models.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i].UpdatedAt, profiles[j].UpdatedAt
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		default:
			return false
		}
	})
}

func profileFromInput(id string, in models.ProfileInput, created time.Time, updated *time.Time) *models.Profile {
	return &models.Profile{
		ID:            id,
		Name:          in.Name,
		Age:           in.Age,
		Gender:        in.Gender,
		LearningStyle: in.LearningStyle,
		Challenges:    in.Challenges,
		Interests:     slices.Clone(in.Interests),
		CreatedAt:     created,
		UpdatedAt:     updated,
	}
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Interests = slices.Clone(p.Interests)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

func cloneProfiles(profiles []*models.Profile) []*models.Profile {
	out := make([]*models.Profile, len(profiles))
	for i, p := range profiles {
		out[i] = cloneProfile(p)
	}
	return out
}
