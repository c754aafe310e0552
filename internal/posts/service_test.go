package posts

import (
	"testing"
	"time"

	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/slugs"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive for the whole test.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Category{},
		&models.Post{}, &models.Like{}, &models.Comment{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(db, slugs.NewPolicy()), db
}

func seedAuthor(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()
	user := models.User{Email: email, Username: &username}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestCreateDerivesSlug(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "Hello, World!", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, "hello-world", post.Slug)
	require.Equal(t, models.StatusDraft, post.Status)
	require.Nil(t, post.PublishedAt)
}

func TestCreateSuffixesOnCollision(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	first, err := svc.Create(author.ID, Input{Title: "Hello World", Content: "one"})
	require.NoError(t, err)
	require.Equal(t, "hello-world", first.Slug)

	second, err := svc.Create(author.ID, Input{Title: "Hello World", Content: "two"})
	require.NoError(t, err)
	require.Equal(t, "hello-world-2", second.Slug)

	third, err := svc.Create(author.ID, Input{Title: "Hello World", Content: "three"})
	require.NoError(t, err)
	require.Equal(t, "hello-world-3", third.Slug)
}

func TestCreatePublishedStampsTimestamp(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "Live", Content: "c", Status: models.StatusPublished})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
}

func TestCreateManualSlug(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "Anything", Content: "c", Slug: "my-custom-slug"})
	require.NoError(t, err)
	require.Equal(t, "my-custom-slug", post.Slug)

	_, err = svc.Create(author.ID, Input{Title: "Other", Content: "c", Slug: "my-custom-slug"})
	require.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Create(author.ID, Input{Title: "Other", Content: "c", Slug: "Bad_Slug!"})
	require.ErrorIs(t, err, ErrInvalidSlug)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	_, err := svc.Create(author.ID, Input{Content: "no title"})
	require.ErrorIs(t, err, ErrNoTitle)

	_, err = svc.Create(author.ID, Input{Title: "T", Content: "c", Status: "archived"})
	require.ErrorIs(t, err, ErrBadStatus)
}

func TestUpdateRegeneratesOnCanonicalTitleChange(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "First Post", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, "first-post", post.Slug)

	updated, err := svc.Update(post.ID, author.ID, Input{Title: "Second Post", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, "second-post", updated.Slug)
}

func TestUpdateKeepsSlugOnCosmeticTitleChange(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "Hello", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, "hello", post.Slug)

	// "hello!!" slugifies to the same canonical form, so the slug survives.
	updated, err := svc.Update(post.ID, author.ID, Input{Title: "hello!!", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, "hello", updated.Slug)
	require.Equal(t, "hello!!", updated.Title)
}

func TestUpdateManualSlugOverride(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "Hello", Content: "c"})
	require.NoError(t, err)

	updated, err := svc.Update(post.ID, author.ID, Input{Title: "Hello", Content: "c", Slug: "pinned-slug"})
	require.NoError(t, err)
	require.Equal(t, "pinned-slug", updated.Slug)

	// A cosmetic title edit afterwards leaves the override alone.
	updated, err = svc.Update(post.ID, author.ID, Input{Title: "HELLO", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, "pinned-slug", updated.Slug)
}

func TestUpdatePublishedAtSetOnce(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	post, err := svc.Create(author.ID, Input{Title: "Draft", Content: "c"})
	require.NoError(t, err)
	require.Nil(t, post.PublishedAt)

	published, err := svc.Update(post.ID, author.ID, Input{Title: "Draft", Content: "c", Status: models.StatusPublished})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstStamp := *published.PublishedAt

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Update(post.ID, author.ID, Input{Title: "Draft", Content: "c", Status: models.StatusDraft})
	require.NoError(t, err)

	republished, err := svc.Update(post.ID, author.ID, Input{Title: "Draft", Content: "c", Status: models.StatusPublished})
	require.NoError(t, err)
	require.NotNil(t, republished.PublishedAt)
	require.WithinDuration(t, firstStamp, *republished.PublishedAt, time.Millisecond,
		"republishing keeps the original timestamp")
}

func TestUpdateAuthorization(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")
	other := seedAuthor(t, db, "b@example.com", "other")

	post, err := svc.Create(author.ID, Input{Title: "Mine", Content: "c"})
	require.NoError(t, err)

	_, err = svc.Update(post.ID, other.ID, Input{Title: "Hijack", Content: "c"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(uuid.New(), author.ID, Input{Title: "Gone", Content: "c"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")
	other := seedAuthor(t, db, "b@example.com", "other")

	post, err := svc.Create(author.ID, Input{Title: "Doomed", Content: "c"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(post.ID, other.ID), ErrForbidden)
	require.NoError(t, svc.Delete(post.ID, author.ID))

	_, err = svc.GetBySlug(post.Slug, author.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetBySlugDraftVisibility(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")
	stranger := seedAuthor(t, db, "b@example.com", "stranger")

	draft, err := svc.Create(author.ID, Input{Title: "Secret", Content: "c"})
	require.NoError(t, err)

	got, err := svc.GetBySlug(draft.Slug, author.ID)
	require.NoError(t, err)
	require.Equal(t, draft.ID, got.ID)

	_, err = svc.GetBySlug(draft.Slug, stranger.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetBySlug(draft.Slug, uuid.Nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPublished(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")

	golang := models.Category{Name: "golang"}
	require.NoError(t, db.Create(&golang).Error)

	_, err := svc.Create(author.ID, Input{Title: "Go Post", Content: "c", Status: models.StatusPublished, CategoryID: &golang.ID})
	require.NoError(t, err)
	_, err = svc.Create(author.ID, Input{Title: "Other Post", Content: "c", Status: models.StatusPublished})
	require.NoError(t, err)
	_, err = svc.Create(author.ID, Input{Title: "Hidden Draft", Content: "c", CategoryID: &golang.ID})
	require.NoError(t, err)

	all, err := svc.ListPublished("", 20, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := svc.ListPublished("golang", 20, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "Go Post", filtered[0].Title)
}

func TestSearch(t *testing.T) {
	svc, db := newTestService(t)
	writer := seedAuthor(t, db, "writer@example.com", "searchwriter")
	other := seedAuthor(t, db, "other@example.com", "someone")

	golang := models.Category{Name: "golang"}
	require.NoError(t, db.Create(&golang).Error)

	_, err := svc.Create(writer.ID, Input{
		Title: "Go Generics Deep Dive", Content: "type parameters explained",
		Status: models.StatusPublished, CategoryID: &golang.ID,
	})
	require.NoError(t, err)
	_, err = svc.Create(other.ID, Input{
		Title: "Weekly Update", Content: "notes on generics adoption",
		Status: models.StatusPublished,
	})
	require.NoError(t, err)
	_, err = svc.Create(writer.ID, Input{
		Title: "Generics Draft", Content: "unfinished",
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "title and content match, case-insensitive", query: "GENERICS", want: 2},
		{name: "author handle match", query: "searchwriter", want: 1},
		{name: "category name match", query: "golang", want: 1},
		{name: "no match", query: "quantum", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := svc.Search(tt.query, 20, 0)
			require.NoError(t, err)
			require.Len(t, list, tt.want)
			require.EqualValues(t, tt.want, total)
		})
	}
}

func TestListByAuthorIncludesDrafts(t *testing.T) {
	svc, db := newTestService(t)
	author := seedAuthor(t, db, "a@example.com", "author")
	other := seedAuthor(t, db, "b@example.com", "other")

	_, err := svc.Create(author.ID, Input{Title: "Published", Content: "c", Status: models.StatusPublished})
	require.NoError(t, err)
	_, err = svc.Create(author.ID, Input{Title: "Draft", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Create(other.ID, Input{Title: "Someone Else", Content: "c"})
	require.NoError(t, err)

	mine, err := svc.ListByAuthor(author.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
}
