package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/pkg/logger"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// newTestDB 每个测试独立的内存库。TranslateError 必须开启，
// 点赞/收藏的并发语义依赖 gorm.ErrDuplicatedKey
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Resource{},
		&model.ResourceLike{},
		&model.ResourceSave{},
		&model.ResourceView{},
		&model.Rating{},
		&model.Notification{},
		&model.Subscriber{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

type testEnv struct {
	db           *gorm.DB
	users        *repository.UserRepository
	resources    *repository.ResourceRepository
	engagements  *repository.EngagementRepository
	ratings      *repository.RatingRepository
	notification *NotificationService
	engagement   *EngagementService
	rating       *RatingService
	recommend    *RecommendationService
	resource     *ResourceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	resources := repository.NewResourceRepository(db)
	engagements := repository.NewEngagementRepository(db)
	ratings := repository.NewRatingRepository(db)
	notifications := repository.NewNotificationRepository(db)

	notifier := NewNotificationService(notifications, nil)

	return &testEnv{
		db:           db,
		users:        users,
		resources:    resources,
		engagements:  engagements,
		ratings:      ratings,
		notification: notifier,
		engagement:   NewEngagementService(engagements, resources, ratings, users, notifier),
		rating:       NewRatingService(ratings, resources, users, notifier),
		recommend:    NewRecommendationService(engagements, resources),
		resource:     NewResourceService(resources, engagements, ratings, notifications, users, notifier),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		School:   "Lincoln High",
		Role:     model.Student,
	}
	if err := e.users.Create(user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) createResource(t *testing.T, uploaderID uint, title, subject, gradeLevel string) *model.Resource {
	t.Helper()

	resource := &model.Resource{
		Title:        title,
		FileURL:      "/uploads/resources/" + title + ".pdf",
		Subject:      subject,
		GradeLevel:   gradeLevel,
		ResourceType: model.Notes,
		UploaderID:   uploaderID,
	}
	if err := e.resources.Create(resource); err != nil {
		t.Fatalf("failed to create resource %s: %v", title, err)
	}
	return resource
}

func (e *testEnv) reloadResource(t *testing.T, id uint) *model.Resource {
	t.Helper()

	resource, err := e.resources.FindByID(id)
	if err != nil {
		t.Fatalf("failed to reload resource %d: %v", id, err)
	}
	return resource
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []model.Notification {
	t.Helper()

	notifications, _, err := e.notification.List(userID, 1, 50)
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	return notifications
}
