package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// newTestDB opens a private shared-cache in-memory database, so subtests
// never see each other's rows.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

var (
	langEN = domain.MustLanguage("en")
	langES = domain.MustLanguage("es")
)

// newConv builds an English-to-Spanish conversation for student.
func newConv(t *testing.T, student uuid.UUID, title string, created time.Time) *domain.Conversation {
	t.Helper()
	c, err := domain.NewConversation(uuid.New(), student, title, langEN, langES, created)
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	return c
}

// addExchange appends a student turn at `at` and the teacher reply a second later.
func addExchange(t *testing.T, c *domain.Conversation, at time.Time, student, teacher string) {
	t.Helper()
	turns := []struct {
		role domain.Role
		at   time.Time
		text string
	}{
		{domain.RoleStudent, at, student},
		{domain.RoleTeacher, at.Add(time.Second), teacher},
	}
	for _, turn := range turns {
		if _, err := c.AddMessage(uuid.New(), turn.at, turn.role, turn.text); err != nil {
			t.Fatalf("AddMessage %s: %v", turn.role, err)
		}
	}
}
