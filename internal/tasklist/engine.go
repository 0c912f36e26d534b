// Package tasklist holds the listing state machine: page accumulation,
// partitioning into panel sections, and the progressive search lifecycle.
// It is pure state; all fetching happens in the update loop's commands.
package tasklist

import (
	"sort"
	"strings"

	"ffly/internal/firefly"
	"ffly/internal/model"
)

// Engine accumulates listing pages for one filter and, independently, the
// results of the active search. Every load and every search carries a
// sequence number; replies from an abandoned load or a superseded search are
// dropped instead of merged.
type Engine struct {
	filter firefly.CompletionFilter

	items    []model.Task
	nextPage int
	hasMore  bool
	loading  bool
	loaded   bool
	loadSeq  int

	searchText    string
	searchGen     int
	searching     bool
	searchResults []model.Task
}

func NewEngine(filter firefly.CompletionFilter) *Engine {
	if !filter.IsValid() {
		filter = firefly.FilterAll
	}
	return &Engine{filter: filter, hasMore: true}
}

func (e *Engine) Filter() firefly.CompletionFilter { return e.filter }

// SetFilter switches the completion filter and discards all loaded pages and
// search results. The caller starts a fresh load afterwards.
func (e *Engine) SetFilter(filter firefly.CompletionFilter) {
	if !filter.IsValid() || filter == e.filter {
		return
	}
	e.filter = filter
	e.Reload()
	e.searchGen++
	e.searching = false
	e.searchResults = nil
}

// Reload discards the loaded pages so the next load starts over at page
// zero. In-flight fetches from before the reload become stale.
func (e *Engine) Reload() {
	e.items = nil
	e.nextPage = 0
	e.hasMore = true
	e.loaded = false
	e.loading = false
	e.loadSeq++
}

// BeginLoad marks a page fetch in flight and returns the sequence number and
// page the fetch must carry. ok is false when nothing is left to load.
func (e *Engine) BeginLoad() (seq, page int, ok bool) {
	if e.loading || !e.hasMore {
		return 0, 0, false
	}
	e.loading = true
	return e.loadSeq, e.nextPage, true
}

// ApplyPage merges one fetched page. Pages from a previous filter are
// reported stale and ignored.
func (e *Engine) ApplyPage(seq int, page firefly.TaskPage) bool {
	if seq != e.loadSeq {
		return false
	}
	e.loading = false
	e.loaded = true
	e.nextPage++
	e.hasMore = page.HasMore
	e.items = append(e.items, page.Items...)
	sortByDueDate(e.items, true)
	return true
}

// AbortLoad clears the in-flight marker after a failed fetch so the next
// load attempt is not wedged.
func (e *Engine) AbortLoad(seq int) {
	if seq == e.loadSeq {
		e.loading = false
	}
}

func (e *Engine) HasMore() bool { return e.hasMore }
func (e *Engine) Loading() bool { return e.loading }

// Empty distinguishes "nothing to show" from "still loading": it is true
// only once at least one page has arrived and produced no tasks.
func (e *Engine) Empty() bool {
	if e.Searching() {
		return false
	}
	if e.searchText != "" {
		return len(e.searchResults) == 0
	}
	return e.loaded && !e.loading && len(e.items) == 0
}

// StartSearch begins a new search generation for text, superseding any
// search still in flight. The returned generation must accompany every
// result page. ok is false when the trimmed text is empty, which clears the
// search entirely.
func (e *Engine) StartSearch(text string) (gen int, ok bool) {
	e.searchText = text
	e.searchGen++
	e.searchResults = nil
	if strings.TrimSpace(text) == "" {
		e.searchText = ""
		e.searching = false
		return 0, false
	}
	e.searching = true
	return e.searchGen, true
}

// ApplySearchPage appends the matching tasks from one fetched page to the
// current search generation. Results for a superseded generation are
// dropped.
func (e *Engine) ApplySearchPage(gen int, items []model.Task) bool {
	if gen != e.searchGen || !e.searching {
		return false
	}
	needle := strings.ToLower(e.searchText)
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			e.searchResults = append(e.searchResults, item)
		}
	}
	return true
}

// FinishSearch marks the generation's final page as applied.
func (e *Engine) FinishSearch(gen int) {
	if gen == e.searchGen {
		e.searching = false
	}
}

func (e *Engine) Searching() bool { return e.searching }

func (e *Engine) SearchText() string { return e.searchText }

// SearchCount reports how many matches the current search has accumulated.
func (e *Engine) SearchCount() int { return len(e.searchResults) }

// Sections partitions the displayed tasks into the To Do and Done panels.
// A task is done for display purposes when it is done, archived, or excused.
// To Do sorts by due date ascending, Done descending.
func (e *Engine) Sections() (toDo, done []model.Task) {
	source := e.items
	if e.searchText != "" {
		source = e.searchResults
	}
	for _, item := range source {
		if item.IsDone || item.Archived || item.IsExcused {
			done = append(done, item)
		} else {
			toDo = append(toDo, item)
		}
	}
	sortByDueDate(toDo, true)
	sortByDueDate(done, false)
	return toDo, done
}

func sortByDueDate(items []model.Task, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return items[i].DueDate.Time.Before(items[j].DueDate.Time)
		}
		return items[j].DueDate.Time.Before(items[i].DueDate.Time)
	})
}
