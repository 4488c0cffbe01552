// Package workspace holds the nested selection of a session: the active
// construction site, its areas, the active area, its jobs, the active job and
// its processings. Clearing a level always clears every level below it.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/store"
)

// Source loads items from the backend.
type Source interface {
	ListItems(ctx context.Context, c scene.Category, parentID string) ([]store.MapItem, error)
	ListJobs(ctx context.Context, areaID string) ([]store.Job, error)
}

// Processing is one processing run of a job.
type Processing struct {
	ID     string `json:"id" doc:"Processing identifier"`
	JobID  string `json:"jobId" doc:"Job the processing belongs to"`
	Status string `json:"status,omitempty" doc:"Processing status"`
}

// Snapshot is a copy of the workspace state.
type Snapshot struct {
	Sites       []store.MapItem `json:"sites" doc:"All construction sites"`
	Site        *store.MapItem  `json:"site,omitempty" doc:"Active construction site"`
	Areas       []store.MapItem `json:"areas" doc:"Areas of the active site"`
	Area        *store.MapItem  `json:"area,omitempty" doc:"Active area"`
	AreaIndex   *int            `json:"areaIndex,omitempty" doc:"Position of the active area"`
	Jobs        []store.Job     `json:"jobs" doc:"Jobs of the active area"`
	Job         *store.Job      `json:"job,omitempty" doc:"Active job"`
	Processings []Processing    `json:"processings" doc:"Processings of the active job"`
	Processing  *Processing     `json:"processing,omitempty" doc:"Active processing"`
}

// Workspace is safe for concurrent use.
type Workspace struct {
	mu     sync.RWMutex
	source Source
	state  Snapshot
}

// New creates an empty workspace backed by source.
func New(source Source) *Workspace {
	return &Workspace{source: source, state: emptySnapshot()}
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Sites:       []store.MapItem{},
		Areas:       []store.MapItem{},
		Jobs:        []store.Job{},
		Processings: []Processing{},
	}
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.state
	s.Sites = append([]store.MapItem{}, s.Sites...)
	s.Areas = append([]store.MapItem{}, s.Areas...)
	s.Jobs = append([]store.Job{}, s.Jobs...)
	s.Processings = append([]Processing{}, s.Processings...)
	return s
}

// ClearProcessing drops the active processing.
func (w *Workspace) ClearProcessing() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearProcessing()
}

// ClearJobAndNested drops the active job and its processings.
func (w *Workspace) ClearJobAndNested() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearJobAndNested()
}

// ClearAreaAndNested drops the active area and its jobs.
func (w *Workspace) ClearAreaAndNested() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearAreaAndNested()
}

// ClearAreasAndNested drops every area of the active site.
func (w *Workspace) ClearAreasAndNested() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearAreasAndNested()
}

// ClearSiteAndRefetch drops the active construction site and everything
// below it, then reloads the list of construction sites.
func (w *Workspace) ClearSiteAndRefetch(ctx context.Context) error {
	w.mu.Lock()
	w.clearAreasAndNested()
	w.state.Site = nil
	w.mu.Unlock()

	sites, err := w.source.ListItems(ctx, scene.CategoryConstructionSite, "")
	if err != nil {
		return fmt.Errorf("refetching construction sites: %w", err)
	}
	w.SetSites(sites)
	return nil
}

func (w *Workspace) clearProcessing() {
	w.state.Processing = nil
}

func (w *Workspace) clearJobAndNested() {
	w.clearProcessing()
	w.state.Job = nil
	w.state.Processings = []Processing{}
}

func (w *Workspace) clearAreaAndNested() {
	w.clearJobAndNested()
	w.state.Area = nil
	w.state.AreaIndex = nil
	w.state.Jobs = []store.Job{}
}

func (w *Workspace) clearAreasAndNested() {
	w.clearAreaAndNested()
	w.state.Areas = []store.MapItem{}
}

// JobStatus returns the status of a job among the loaded jobs.
func (w *Workspace) JobStatus(id string) (store.JobStatus, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, j := range w.state.Jobs {
		if j.ID == id {
			return j.Status, true
		}
	}
	return "", false
}

// SetSites replaces the list of construction sites.
func (w *Workspace) SetSites(sites []store.MapItem) {
	w.mu.Lock()
	w.state.Sites = append([]store.MapItem{}, sites...)
	w.mu.Unlock()
}

// SetSite sets the active construction site.
func (w *Workspace) SetSite(site *store.MapItem) {
	w.mu.Lock()
	w.state.Site = site
	w.mu.Unlock()
}

// SetAreas replaces the areas of the active site.
func (w *Workspace) SetAreas(areas []store.MapItem) {
	w.mu.Lock()
	w.state.Areas = append([]store.MapItem{}, areas...)
	w.mu.Unlock()
}

// SetArea sets the active area and its position in the area list.
func (w *Workspace) SetArea(area *store.MapItem, index *int) {
	w.mu.Lock()
	w.state.Area = area
	w.state.AreaIndex = index
	w.mu.Unlock()
}

// AreaIndex returns the position of the active area, if any.
func (w *Workspace) AreaIndex() (int, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state.AreaIndex == nil {
		return 0, false
	}
	return *w.state.AreaIndex, true
}

// SetJobs replaces the jobs of the active area.
func (w *Workspace) SetJobs(jobs []store.Job) {
	w.mu.Lock()
	w.state.Jobs = append([]store.Job{}, jobs...)
	w.mu.Unlock()
}

// SetJob sets the active job.
func (w *Workspace) SetJob(job *store.Job) {
	w.mu.Lock()
	w.state.Job = job
	w.mu.Unlock()
}

// SetProcessings replaces the processings of the active job.
func (w *Workspace) SetProcessings(ps []Processing) {
	w.mu.Lock()
	w.state.Processings = append([]Processing{}, ps...)
	w.mu.Unlock()
}

// SetProcessing sets the active processing.
func (w *Workspace) SetProcessing(p *Processing) {
	w.mu.Lock()
	w.state.Processing = p
	w.mu.Unlock()
}

// LoadAreas fetches the areas of a construction site into the workspace.
func (w *Workspace) LoadAreas(ctx context.Context, siteID string) ([]store.MapItem, error) {
	areas, err := w.source.ListItems(ctx, scene.CategoryArea, siteID)
	if err != nil {
		return nil, fmt.Errorf("loading areas of %q: %w", siteID, err)
	}
	w.SetAreas(areas)
	return areas, nil
}

// LoadJobs fetches the jobs of an area into the workspace.
func (w *Workspace) LoadJobs(ctx context.Context, areaID string) ([]store.Job, error) {
	jobs, err := w.source.ListJobs(ctx, areaID)
	if err != nil {
		return nil, fmt.Errorf("loading jobs of %q: %w", areaID, err)
	}
	w.SetJobs(jobs)
	return jobs, nil
}

// SelectSite makes the loaded construction site id active.
func (w *Workspace) SelectSite(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.state.Sites {
		if s.ID == id {
			w.state.Site = &s
			return true
		}
	}
	return false
}

// SelectArea makes the loaded area id active and records its index.
func (w *Workspace) SelectArea(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, a := range w.state.Areas {
		if a.ID == id {
			w.state.Area = &a
			w.state.AreaIndex = &i
			return true
		}
	}
	return false
}

// SelectJob makes the loaded job id active.
func (w *Workspace) SelectJob(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, j := range w.state.Jobs {
		if j.ID == id {
			w.state.Job = &j
			return true
		}
	}
	return false
}
