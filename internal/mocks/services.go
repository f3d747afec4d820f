package mocks

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/service"
)

// Verify interface compliance
var (
	_ service.ArticleService     = (*MockArticleService)(nil)
	_ service.CategoryService    = (*MockCategoryService)(nil)
	_ service.CommentService     = (*MockCommentService)(nil)
	_ service.UserService        = (*MockUserService)(nil)
	_ service.DirectoryService   = (*MockDirectoryService)(nil)
	_ service.ApprovalService    = (*MockApprovalService)(nil)
	_ service.ExportService      = (*MockExportService)(nil)
	_ service.MaintenanceService = (*MockMaintenanceService)(nil)
)

// MockArticleService is a mock implementation of ArticleService
type MockArticleService struct {
	Articles   map[string]*models.Article
	ListFunc   func(ctx context.Context, params models.ListParams) (*models.ArticleList, error)
	SaveFunc   func(ctx context.Context, req *models.ArticleRequest) (*models.Article, bool, error)
	LastParams models.ListParams
}

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleService) List(ctx context.Context, params models.ListParams) (*models.ArticleList, error) {
	m.LastParams = params
	if m.ListFunc != nil {
		return m.ListFunc(ctx, params)
	}
	list := &models.ArticleList{Items: []models.Article{}}
	for _, a := range m.Articles {
		list.Items = append(list.Items, *a)
	}
	list.Total = len(list.Items)
	return list, nil
}

func (m *MockArticleService) Get(ctx context.Context, id string) (*models.Article, error) {
	if a, ok := m.Articles[id]; ok {
		return a, nil
	}
	return nil, errs.NewNotFoundError("Article not found")
}

func (m *MockArticleService) Save(ctx context.Context, req *models.ArticleRequest) (*models.Article, bool, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, req)
	}
	id := req.ID
	if id == "" {
		id = "generated-id"
	}
	_, exists := m.Articles[id]
	article := &models.Article{ID: id, Title: req.Title, Content: req.Content, Author: req.Author, CategoryID: req.CategoryID, Image: req.Image}
	m.Articles[id] = article
	return article, !exists, nil
}

func (m *MockArticleService) Update(ctx context.Context, id string, req *models.ArticleRequest) (*models.Article, error) {
	if _, ok := m.Articles[id]; !ok {
		return nil, errs.NewNotFoundError("Article not found")
	}
	article := &models.Article{ID: id, Title: req.Title, Content: req.Content, Author: req.Author}
	m.Articles[id] = article
	return article, nil
}

func (m *MockArticleService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Articles[id]; !ok {
		return errs.NewNotFoundError("Article not found")
	}
	delete(m.Articles, id)
	return nil
}

// MockCategoryService is a mock implementation of CategoryService
type MockCategoryService struct {
	Categories map[string]*models.Category
	CreateErr  error
}

func NewMockCategoryService() *MockCategoryService {
	return &MockCategoryService{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryService) List(ctx context.Context, params models.ListParams) ([]models.Category, error) {
	items := []models.Category{}
	for _, c := range m.Categories {
		items = append(items, *c)
	}
	return items, nil
}

func (m *MockCategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	if c, ok := m.Categories[id]; ok {
		return c, nil
	}
	return nil, errs.NewNotFoundError("Category not found")
}

func (m *MockCategoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	c := &models.Category{ID: req.ID, Name: req.Name}
	if c.ID == "" {
		c.ID = "generated-id"
	}
	m.Categories[c.ID] = c
	return c, nil
}

func (m *MockCategoryService) Update(ctx context.Context, id string, req *models.CategoryRequest) (*models.Category, error) {
	if _, ok := m.Categories[id]; !ok {
		return nil, errs.NewNotFoundError("Category not found")
	}
	c := &models.Category{ID: id, Name: req.Name}
	m.Categories[id] = c
	return c, nil
}

func (m *MockCategoryService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Categories[id]; !ok {
		return errs.NewNotFoundError("Category not found")
	}
	delete(m.Categories, id)
	return nil
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	Comments      map[string]*models.Comment
	CreateFunc    func(ctx context.Context, req *models.CommentRequest, files []*multipart.FileHeader) (*models.Comment, error)
	LastArticleID string
	LastFiles     []*multipart.FileHeader
}

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{Comments: make(map[string]*models.Comment)}
}

func (m *MockCommentService) List(ctx context.Context, params models.ListParams, articleID string) ([]models.Comment, error) {
	m.LastArticleID = articleID
	items := []models.Comment{}
	for _, c := range m.Comments {
		if articleID == "" || c.ArticleID == articleID {
			items = append(items, *c)
		}
	}
	return items, nil
}

func (m *MockCommentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	if c, ok := m.Comments[id]; ok {
		return c, nil
	}
	return nil, errs.NewNotFoundError("Comment not found")
}

func (m *MockCommentService) Create(ctx context.Context, req *models.CommentRequest, files []*multipart.FileHeader) (*models.Comment, error) {
	m.LastFiles = files
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req, files)
	}
	c := &models.Comment{
		ID:        "generated-id",
		ArticleID: req.ArticleID,
		UserID:    req.UserID,
		UserName:  req.UserName,
		Text:      req.Text,
		ParentID:  req.ParentID,
		Files:     models.FileList{},
	}
	for _, fh := range files {
		c.Files = append(c.Files, "/uploads/comments/"+fh.Filename)
	}
	m.Comments[c.ID] = c
	return c, nil
}

func (m *MockCommentService) Update(ctx context.Context, id string, req *models.CommentUpdateRequest) (*models.Comment, error) {
	c, ok := m.Comments[id]
	if !ok {
		return nil, errs.NewNotFoundError("Comment not found")
	}
	c.UserName, c.Text = req.UserName, req.Text
	return c, nil
}

func (m *MockCommentService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Comments[id]; !ok {
		return errs.NewNotFoundError("Comment not found")
	}
	delete(m.Comments, id)
	return nil
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	Users map[string]*models.User
}

func NewMockUserService() *MockUserService {
	return &MockUserService{Users: make(map[string]*models.User)}
}

func (m *MockUserService) List(ctx context.Context, params models.ListParams) ([]models.User, error) {
	items := []models.User{}
	for _, u := range m.Users {
		items = append(items, *u)
	}
	return items, nil
}

func (m *MockUserService) Get(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.Users[id]; ok {
		return u, nil
	}
	return nil, errs.NewNotFoundError("User not found")
}

func (m *MockUserService) Create(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	u := &models.User{ID: "generated-id", Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	if u.Role == "" {
		u.Role = models.DefaultRole
	}
	m.Users[u.ID] = u
	return u, nil
}

func (m *MockUserService) Update(ctx context.Context, id string, req *models.UserRequest) (*models.User, error) {
	if _, ok := m.Users[id]; !ok {
		return nil, errs.NewNotFoundError("User not found")
	}
	u := &models.User{ID: id, Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	m.Users[id] = u
	return u, nil
}

func (m *MockUserService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, errs.NewNotFoundError("User not found")
	}
	u.Role = role
	return u, nil
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Users[id]; !ok {
		return errs.NewNotFoundError("User not found")
	}
	delete(m.Users, id)
	return nil
}

// MockDirectoryService is a mock implementation of DirectoryService
type MockDirectoryService struct {
	Services   map[string]*models.Service
	Categories []models.ServiceCategory
}

func NewMockDirectoryService() *MockDirectoryService {
	return &MockDirectoryService{
		Services:   make(map[string]*models.Service),
		Categories: []models.ServiceCategory{},
	}
}

func (m *MockDirectoryService) List(ctx context.Context, params models.ListParams) (*models.ServiceList, error) {
	list := &models.ServiceList{Services: []models.Service{}}
	for _, s := range m.Services {
		list.Services = append(list.Services, *s)
	}
	list.Total = len(list.Services)
	return list, nil
}

func (m *MockDirectoryService) Get(ctx context.Context, id string) (*models.Service, error) {
	if s, ok := m.Services[id]; ok {
		return s, nil
	}
	return nil, errs.NewNotFoundError("Service not found")
}

func (m *MockDirectoryService) Create(ctx context.Context, req *models.ServiceRequest) (*models.Service, error) {
	s := &models.Service{ID: "generated-id", Title: req.Title, URL: req.URL, Description: req.Description, CategoryID: req.CategoryID}
	m.Services[s.ID] = s
	return s, nil
}

func (m *MockDirectoryService) Update(ctx context.Context, id string, req *models.ServiceRequest) (*models.Service, error) {
	if _, ok := m.Services[id]; !ok {
		return nil, errs.NewNotFoundError("Service not found")
	}
	s := &models.Service{ID: id, Title: req.Title, URL: req.URL, Description: req.Description, CategoryID: req.CategoryID}
	m.Services[id] = s
	return s, nil
}

func (m *MockDirectoryService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Services[id]; !ok {
		return errs.NewNotFoundError("Service not found")
	}
	delete(m.Services, id)
	return nil
}

func (m *MockDirectoryService) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	return m.Categories, nil
}

func (m *MockDirectoryService) CreateCategory(ctx context.Context, req *models.ServiceCategoryRequest) (*models.ServiceCategory, error) {
	c := models.ServiceCategory{ID: "generated-id", Name: req.Name}
	m.Categories = append(m.Categories, c)
	return &c, nil
}

// MockApprovalService is a mock implementation of ApprovalService
type MockApprovalService struct {
	Approvals   []models.Approval
	TotalPages  int
	Ingested    []models.ApprovalRequest
	PurgeResult *models.PurgeResult
	Err         error
	LastParams  models.ListParams
	LastFilter  models.ApprovalFilter
}

func NewMockApprovalService() *MockApprovalService {
	return &MockApprovalService{Approvals: []models.Approval{}}
}

func (m *MockApprovalService) List(ctx context.Context, params models.ListParams, filter models.ApprovalFilter) ([]models.Approval, int, error) {
	m.LastParams, m.LastFilter = params, filter
	if m.Err != nil {
		return nil, 0, m.Err
	}
	return m.Approvals, m.TotalPages, nil
}

func (m *MockApprovalService) Ingest(ctx context.Context, batch *models.ApprovalBatch) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.Ingested = append(m.Ingested, batch.Approvals...)
	return len(batch.Approvals), nil
}

func (m *MockApprovalService) PurgePreviousMonth(ctx context.Context) (*models.PurgeResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.PurgeResult == nil {
		return &models.PurgeResult{}, nil
	}
	return m.PurgeResult, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamApprovalsFunc func(ctx context.Context, w http.ResponseWriter, format string, filter models.ApprovalFilter) error
	Counts              map[string]int
}

func NewMockExportService() *MockExportService {
	return &MockExportService{Counts: map[string]int{}}
}

func (m *MockExportService) StreamApprovals(ctx context.Context, w http.ResponseWriter, format string, filter models.ApprovalFilter) error {
	if m.StreamApprovalsFunc != nil {
		return m.StreamApprovalsFunc(ctx, w, format, filter)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockMaintenanceService is a mock implementation of MaintenanceService
type MockMaintenanceService struct {
	Started bool
}

func (m *MockMaintenanceService) Start() error {
	m.Started = true
	return nil
}

func (m *MockMaintenanceService) Stop(ctx context.Context) {
	m.Started = false
}
