package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.ArticleRepository  = (*MockArticleRepository)(nil)
	_ repository.CategoryRepository = (*MockCategoryRepository)(nil)
	_ repository.CommentRepository  = (*MockCommentRepository)(nil)
	_ repository.UserRepository     = (*MockUserRepository)(nil)
	_ repository.ApprovalRepository = (*MockApprovalRepository)(nil)
	_ repository.ServiceRepository  = (*MockServiceRepository)(nil)
)

// NewRepositories wires a fresh mock for every repository
func NewRepositories() (*repository.Repositories, *MockRepositories) {
	m := &MockRepositories{
		Article:  NewMockArticleRepository(),
		Category: NewMockCategoryRepository(),
		Comment:  NewMockCommentRepository(),
		User:     NewMockUserRepository(),
		Approval: NewMockApprovalRepository(),
		Service:  NewMockServiceRepository(),
	}
	return &repository.Repositories{
		Article:  m.Article,
		Category: m.Category,
		Comment:  m.Comment,
		User:     m.User,
		Approval: m.Approval,
		Service:  m.Service,
	}, m
}

// MockRepositories exposes the concrete mocks behind NewRepositories
type MockRepositories struct {
	Article  *MockArticleRepository
	Category *MockCategoryRepository
	Comment  *MockCommentRepository
	User     *MockUserRepository
	Approval *MockApprovalRepository
	Service  *MockServiceRepository
}

// window returns the slice bounds of page over n items
func window(page models.Page, n int) (int, int) {
	start := page.Offset()
	if start > n {
		start = n
	}
	end := start + page.Limit
	if end > n {
		end = n
	}
	return start, end
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	Articles   map[string]*models.Article
	Err        error
	ListCalls  int
	UpsertFunc func(ctx context.Context, article *models.Article) (bool, error)
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepository) List(ctx context.Context, q models.ArticleQuery) ([]models.Article, int, error) {
	m.ListCalls++
	if m.Err != nil {
		return nil, 0, m.Err
	}
	items := []models.Article{}
	for _, a := range m.Articles {
		if q.Search == "" || strings.Contains(strings.ToLower(a.Title+a.Content), strings.ToLower(q.Search)) {
			items = append(items, *a)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start, end := window(q.Page, len(items))
	return items[start:end], len(items), nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if a, ok := m.Articles[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Articles[id]
	return exists, m.Err
}

func (m *MockArticleRepository) Upsert(ctx context.Context, article *models.Article) (bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, article)
	}
	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.Articles[article.ID]
	copied := *article
	m.Articles[article.ID] = &copied
	return !exists, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if _, exists := m.Articles[article.ID]; !exists {
		return false, nil
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return true, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.Articles[id]
	delete(m.Articles, id)
	return exists, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	return len(m.Articles), m.Err
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories  map[string]*models.Category
	Err         error
	InsertError error
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryRepository) List(ctx context.Context, page *models.Page) ([]models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	items := []models.Category{}
	for _, c := range m.Categories {
		items = append(items, *c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	if page != nil {
		start, end := window(*page, len(items))
		items = items[start:end]
	}
	return items, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if c, ok := m.Categories[id]; ok {
		copied := *c
		return &copied, m.Err
	}
	return nil, m.Err
}

func (m *MockCategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Categories[id]
	return exists, m.Err
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	copied := *category
	m.Categories[category.ID] = &copied
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) (bool, error) {
	if _, exists := m.Categories[category.ID]; !exists {
		return false, m.Err
	}
	copied := *category
	m.Categories[category.ID] = &copied
	return true, m.Err
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, exists := m.Categories[id]
	delete(m.Categories, id)
	return exists, m.Err
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.Categories), m.Err
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    map[string]*models.Comment
	Err         error
	InsertError error
	ListCalls   int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[string]*models.Comment)}
}

func (m *MockCommentRepository) List(ctx context.Context, q models.CommentQuery) ([]models.Comment, error) {
	m.ListCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	items := []models.Comment{}
	for _, c := range m.Comments {
		if q.ArticleID == "" || c.ArticleID == q.ArticleID {
			items = append(items, *c)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start, end := window(q.Page, len(items))
	return items[start:end], nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if c, ok := m.Comments[id]; ok {
		copied := *c
		return &copied, m.Err
	}
	return nil, m.Err
}

func (m *MockCommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Comments[id]
	return exists, m.Err
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	copied := *comment
	m.Comments[comment.ID] = &copied
	return nil
}

func (m *MockCommentRepository) Update(ctx context.Context, id, userName, text string) (bool, error) {
	c, exists := m.Comments[id]
	if !exists {
		return false, m.Err
	}
	c.UserName, c.Text = userName, text
	return true, m.Err
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, exists := m.Comments[id]
	delete(m.Comments, id)
	return exists, m.Err
}

func (m *MockCommentRepository) ListReplyIDs(ctx context.Context, parentID string) ([]string, error) {
	ids := []string{}
	for _, c := range m.Comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			ids = append(ids, c.ID)
		}
	}
	return ids, m.Err
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Comments), m.Err
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[string]*models.User
	Err         error
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) List(ctx context.Context, page *models.Page) ([]models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	items := []models.User{}
	for _, u := range m.Users {
		copied := *u
		copied.Password = ""
		items = append(items, copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if page != nil {
		start, end := window(*page, len(items))
		items = items[start:end]
	}
	return items, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.Users[id]; ok {
		copied := *u
		copied.Password = ""
		return &copied, m.Err
	}
	return nil, m.Err
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) (bool, error) {
	existing, exists := m.Users[user.ID]
	if !exists {
		return false, m.Err
	}
	copied := *user
	copied.CreatedAt = existing.CreatedAt
	m.Users[user.ID] = &copied
	return true, m.Err
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id, role string) (bool, error) {
	u, exists := m.Users[id]
	if !exists {
		return false, m.Err
	}
	u.Role = role
	return true, m.Err
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, exists := m.Users[id]
	delete(m.Users, id)
	return exists, m.Err
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.Users), m.Err
}

// MockApprovalRepository is a mock implementation of ApprovalRepository
type MockApprovalRepository struct {
	Approvals        []*models.Approval
	Err              error
	BatchInsertCalls int
	LastQuery        models.ApprovalQuery
	DeletedFrom      time.Time
	DeletedTo        time.Time
}

func NewMockApprovalRepository() *MockApprovalRepository {
	return &MockApprovalRepository{}
}

func (m *MockApprovalRepository) matching(filter models.ApprovalFilter) []models.Approval {
	items := []models.Approval{}
	for _, a := range m.Approvals {
		if filter.From != nil && a.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.CreatedAt.After(*filter.To) {
			continue
		}
		items = append(items, *a)
	}
	return items
}

func (m *MockApprovalRepository) List(ctx context.Context, q models.ApprovalQuery) ([]models.Approval, int, error) {
	m.LastQuery = q
	if m.Err != nil {
		return nil, 0, m.Err
	}
	items := m.matching(q.ApprovalFilter)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start, end := window(q.Page, len(items))
	return items[start:end], len(items), nil
}

func (m *MockApprovalRepository) BatchInsert(ctx context.Context, approvals []*models.Approval) (int, error) {
	m.BatchInsertCalls++
	if m.Err != nil {
		return 0, m.Err
	}
	m.Approvals = append(m.Approvals, approvals...)
	return len(approvals), nil
}

func (m *MockApprovalRepository) DeleteBetween(ctx context.Context, from, to time.Time) (int64, error) {
	m.DeletedFrom, m.DeletedTo = from, to
	if m.Err != nil {
		return 0, m.Err
	}
	kept := m.Approvals[:0]
	var deleted int64
	for _, a := range m.Approvals {
		if !a.CreatedAt.Before(from) && !a.CreatedAt.After(to) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	m.Approvals = kept
	return deleted, nil
}

func (m *MockApprovalRepository) StreamAll(ctx context.Context, filter models.ApprovalFilter, callback func(*models.Approval) error) error {
	if m.Err != nil {
		return m.Err
	}
	items := m.matching(filter)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	for i := range items {
		if err := callback(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockApprovalRepository) Count(ctx context.Context) (int, error) {
	return len(m.Approvals), m.Err
}

// MockServiceRepository is a mock implementation of ServiceRepository
type MockServiceRepository struct {
	Services   map[string]*models.Service
	Categories map[string]*models.ServiceCategory
	Err        error
	ListCalls  int
}

func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{
		Services:   make(map[string]*models.Service),
		Categories: make(map[string]*models.ServiceCategory),
	}
}

// withCategory fills the joined category name
func (m *MockServiceRepository) withCategory(s models.Service) models.Service {
	s.CategoryName = nil
	if s.CategoryID != nil {
		if c, ok := m.Categories[*s.CategoryID]; ok {
			name := c.Name
			s.CategoryName = &name
		}
	}
	return s
}

func (m *MockServiceRepository) List(ctx context.Context, q models.ServiceQuery) ([]models.Service, int, error) {
	m.ListCalls++
	if m.Err != nil {
		return nil, 0, m.Err
	}
	items := []models.Service{}
	for _, s := range m.Services {
		if q.Search == "" || strings.Contains(strings.ToLower(s.Title), strings.ToLower(q.Search)) {
			items = append(items, m.withCategory(*s))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start, end := window(q.Page, len(items))
	return items[start:end], len(items), nil
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	if s, ok := m.Services[id]; ok {
		joined := m.withCategory(*s)
		return &joined, m.Err
	}
	return nil, m.Err
}

func (m *MockServiceRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Services[id]
	return exists, m.Err
}

func (m *MockServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if m.Err != nil {
		return m.Err
	}
	copied := *service
	m.Services[service.ID] = &copied
	return nil
}

func (m *MockServiceRepository) Update(ctx context.Context, service *models.Service) (bool, error) {
	existing, exists := m.Services[service.ID]
	if !exists {
		return false, m.Err
	}
	copied := *service
	copied.CreatedAt = existing.CreatedAt
	m.Services[service.ID] = &copied
	return true, m.Err
}

func (m *MockServiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, exists := m.Services[id]
	delete(m.Services, id)
	return exists, m.Err
}

func (m *MockServiceRepository) Count(ctx context.Context) (int, error) {
	return len(m.Services), m.Err
}

func (m *MockServiceRepository) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	items := []models.ServiceCategory{}
	for _, c := range m.Categories {
		items = append(items, *c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, m.Err
}

func (m *MockServiceRepository) CreateCategory(ctx context.Context, category *models.ServiceCategory) error {
	if m.Err != nil {
		return m.Err
	}
	copied := *category
	m.Categories[category.ID] = &copied
	return nil
}

func (m *MockServiceRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Categories[id]
	return exists, m.Err
}
