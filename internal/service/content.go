package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"

	defaultPerPage = 10
	maxPerPage     = 100
)

// ListFilter mirrors the dashboard table controls: search box, status tabs and pager.
type ListFilter struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// ListResult aggregates one page of results.
type ListResult[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

type publishable[T any] interface {
	*T
	PublishState() *db.Publishing
}

// contentStore implements the operations shared by every publishable model.
type contentStore[T any, P publishable[T]] struct {
	db            *gorm.DB
	notFound      error
	searchColumns []string
	order         []string
	now           func() time.Time
}

func newContentStore[T any, P publishable[T]](gdb *gorm.DB, notFound error, searchColumns ...string) *contentStore[T, P] {
	return &contentStore[T, P]{
		db:            gdb,
		notFound:      notFound,
		searchColumns: searchColumns,
		order:         []string{"sort_order asc", "created_at desc", "id desc"},
		now:           time.Now,
	}
}

// List returns one page of records matching the filter.
func (s *contentStore[T, P]) List(filter ListFilter) (ListResult[T], error) {
	query, err := applyStatus(s.db.Model(new(T)), filter.Status)
	if err != nil {
		return ListResult[T]{Items: []T{}}, err
	}
	query = applySearch(query, filter.Search, s.searchColumns)

	return paginate[T](query, filter.Page, filter.PerPage, s.order...)
}

// Get fetches a record by id.
func (s *contentStore[T, P]) Get(id uint) (*T, error) {
	var item T
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.notFound
		}
		return nil, err
	}
	return &item, nil
}

// Delete soft deletes a record.
func (s *contentStore[T, P]) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}

// BulkDelete removes every listed record that exists and reports how many were removed.
func (s *contentStore[T, P]) BulkDelete(ids []uint) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", ids).Delete(new(T))
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	return deleted, nil
}

// SetPublished sets the publish flag, or toggles it when published is nil.
func (s *contentStore[T, P]) SetPublished(id uint, published *bool) (*T, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	state := P(item).PublishState()
	next := !state.Published
	if published != nil {
		next = *published
	}
	state.SetPublished(next, s.now())

	if err := s.db.Model(item).Updates(map[string]any{
		"published":    state.Published,
		"published_at": state.PublishedAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("update publish state: %w", err)
	}
	return item, nil
}

// Reorder 按给定顺序重排排序字段
// 传入的 IDs 会被依次赋值 0,1,2...，未包含的条目保持原排序
// 任一 ID 不存在（或已删除）时整体回滚并返回 not found
func (s *contentStore[T, P]) Reorder(ids []uint) error {
	if err := validateIDs(ids); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for index, id := range ids {
			result := tx.Model(new(T)).Where("id = ?", id).Update("sort_order", index)
			if result.Error != nil {
				return fmt.Errorf("reorder: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: id %d", s.notFound, id)
			}
		}
		return nil
	})
}

// published lists published records; refine may add filters and leading order clauses.
func (s *contentStore[T, P]) published(limit int, refine func(*gorm.DB) *gorm.DB) ([]T, error) {
	query := s.db.Model(new(T)).Where("published = ?", true)
	if refine != nil {
		query = refine(query)
	}
	for _, order := range s.order {
		query = query.Order(order)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	items := []T{}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *contentStore[T, P]) resolveSortOrder(sortOrder *int) (int, error) {
	if sortOrder != nil {
		return *sortOrder, nil
	}

	var maxOrder int
	if err := s.db.Model(new(T)).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return 0, fmt.Errorf("resolve sort order: %w", err)
	}
	return maxOrder + 1, nil
}

// applyInputState copies the optional publish/sort fields of an input onto a record.
// New records without an explicit sort order are appended after the last one.
func (s *contentStore[T, P]) applyInputState(item *T, published *bool, sortOrder *int, creating bool) error {
	state := P(item).PublishState()
	if published != nil {
		state.SetPublished(*published, s.now())
	}

	switch {
	case sortOrder != nil:
		state.SortOrder = *sortOrder
	case creating:
		order, err := s.resolveSortOrder(nil)
		if err != nil {
			return err
		}
		state.SortOrder = order
	}
	return nil
}

func paginate[T any](query *gorm.DB, page, perPage int, order ...string) (ListResult[T], error) {
	result := ListResult[T]{
		Items:   []T{},
		Page:    normalizePage(page),
		PerPage: normalizePerPage(perPage, defaultPerPage),
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	for _, clause := range order {
		query = query.Order(clause)
	}
	if err := query.Limit(result.PerPage).Offset(offset).Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

func applyStatus(query *gorm.DB, status string) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
		return query, nil
	case StatusPublished:
		return query.Where("published = ?", true), nil
	case StatusDraft:
		return query.Where("published = ?", false), nil
	default:
		return query, fieldError("status", "status must be one of published, draft")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func applySearch(query *gorm.DB, search string, columns []string) *gorm.DB {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" || len(columns) == 0 {
		return query
	}

	like := "%" + likeEscaper.Replace(term) + "%"
	conditions := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column))
		args = append(args, like)
	}

	return query.Where("("+strings.Join(conditions, " OR ")+")", args...)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
