package repository

import (
	"context"
	"testing"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	tags        TagRepository
	ingredients IngredientRepository
	posts       PostRepository
	images      ImageRepository
	comments    CommentRepository
	rates       RateRepository
	addresses   AddressRepository
	users       UserRepository
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	return &fixture{
		db:          db,
		tags:        NewTagRepository(db),
		ingredients: NewIngredientRepository(db),
		posts:       NewPostRepository(db),
		images:      NewImageRepository(db),
		comments:    NewCommentRepository(db),
		rates:       NewRateRepository(db),
		addresses:   NewAddressRepository(db),
		users:       NewUserRepository(db),
	}
}

func (f *fixture) tag(t *testing.T, userID uint, name string) models.Tag {
	tag := models.Tag{Name: name, UserID: userID}
	require.NoError(t, f.tags.Create(context.Background(), &tag))
	return tag
}

func (f *fixture) post(t *testing.T, userID uint, title string, rel PostRelations) *models.Post {
	post := &models.Post{UserID: userID, Title: title, TimeMinutes: 5, Price: models.PriceFromCents(500)}
	require.NoError(t, f.posts.Create(context.Background(), post, rel))
	return post
}

func TestAttributeRepository_OrderingAndAssignedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := testutil.CreateUser(t, f.db, "one@example.com")
	u2 := testutil.CreateUser(t, f.db, "two@example.com")

	breakfast := f.tag(t, u1.ID, "Breakfast")
	f.tag(t, u1.ID, "Vegan")
	f.tag(t, u2.ID, "Fruity")
	f.post(t, u1.ID, "Porridge", PostRelations{TagIDs: []uint{breakfast.ID}})

	all, err := f.tags.List(ctx, u1.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Vegan", all[0].Name)
	assert.Equal(t, "Breakfast", all[1].Name)

	assigned, err := f.tags.List(ctx, u1.ID, true)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, breakfast.ID, assigned[0].ID)

	// A tag attached to two posts is still listed once.
	f.post(t, u1.ID, "Pancakes", PostRelations{TagIDs: []uint{breakfast.ID}})
	assigned, err = f.tags.List(ctx, u1.ID, true)
	require.NoError(t, err)
	assert.Len(t, assigned, 1)

	empty, err := f.ingredients.List(ctx, u2.ID, true)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAttributeRepository_OwnedIDs(t *testing.T) {
	f := newFixture(t)
	u1 := testutil.CreateUser(t, f.db, "one@example.com")
	u2 := testutil.CreateUser(t, f.db, "two@example.com")
	mine := models.Ingredient{Name: "Salt", UserID: u1.ID}
	theirs := models.Ingredient{Name: "Pepper", UserID: u2.ID}
	require.NoError(t, f.ingredients.Create(context.Background(), &mine))
	require.NoError(t, f.ingredients.Create(context.Background(), &theirs))

	ids, err := f.ingredients.OwnedIDs(context.Background(), u1.ID, []uint{mine.ID, theirs.ID, 999, mine.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{mine.ID}, ids)
}

func TestPostRepository_ListIsOwnerScopedAndFiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := testutil.CreateUser(t, f.db, "one@example.com")
	u2 := testutil.CreateUser(t, f.db, "two@example.com")

	vegan := f.tag(t, u1.ID, "Vegan")
	salt := models.Ingredient{Name: "Salt", UserID: u1.ID}
	require.NoError(t, f.ingredients.Create(ctx, &salt))

	curry := f.post(t, u1.ID, "Curry", PostRelations{TagIDs: []uint{vegan.ID}})
	soup := f.post(t, u1.ID, "Soup", PostRelations{IngredientIDs: []uint{salt.ID}})
	plain := f.post(t, u1.ID, "Plain", PostRelations{})
	f.post(t, u2.ID, "Other", PostRelations{})

	all, err := f.posts.List(ctx, u1.ID, PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{plain.ID, soup.ID, curry.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []uint{vegan.ID}, all[2].TagIDs())

	tagged, err := f.posts.List(ctx, u1.ID, PostFilter{TagIDs: []uint{vegan.ID}})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, curry.ID, tagged[0].ID)

	withSalt, err := f.posts.List(ctx, u1.ID, PostFilter{IngredientIDs: []uint{salt.ID}})
	require.NoError(t, err)
	require.Len(t, withSalt, 1)
	assert.Equal(t, soup.ID, withSalt[0].ID)

	both, err := f.posts.List(ctx, u1.ID, PostFilter{TagIDs: []uint{vegan.ID}, IngredientIDs: []uint{salt.ID}})
	require.NoError(t, err)
	assert.Empty(t, both)

	for _, filter := range []PostFilter{
		{TagIDs: []uint{0}},
		{TagIDs: []uint{}},
		{IngredientIDs: []uint{0, 0}},
	} {
		none, err := f.posts.List(ctx, u1.ID, filter)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none, "%+v", filter)
	}

	_, err = f.posts.GetByID(ctx, u2.ID, curry.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.True(t, models.IsCode(f.posts.Exists(ctx, u2.ID, curry.ID), models.CodeNotFound))
	assert.NoError(t, f.posts.Exists(ctx, u1.ID, curry.ID))
}

func TestPostRepository_UpdateColumnsAndRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "one@example.com")
	vegan := f.tag(t, u.ID, "Vegan")
	quick := f.tag(t, u.ID, "Quick")
	post := f.post(t, u.ID, "Curry", PostRelations{TagIDs: []uint{vegan.ID}})

	// Partial: title only, tags untouched.
	patch := &models.Post{ID: post.ID, UserID: u.ID, Title: "Green curry"}
	require.NoError(t, f.posts.Update(ctx, patch, []string{"title"}, PostRelations{}))
	got, err := f.posts.GetByID(ctx, u.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green curry", got.Title)
	assert.Equal(t, 5, got.TimeMinutes)
	assert.Equal(t, []uint{vegan.ID}, got.TagIDs())

	// Replace tags only.
	require.NoError(t, f.posts.Update(ctx, &models.Post{ID: post.ID, UserID: u.ID}, nil,
		PostRelations{TagIDs: []uint{quick.ID}, ReplaceTags: true}))
	got, err = f.posts.GetByID(ctx, u.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{quick.ID}, got.TagIDs())

	// Clear tags.
	require.NoError(t, f.posts.Update(ctx, &models.Post{ID: post.ID, UserID: u.ID, Title: "Curry"}, []string{"title"},
		PostRelations{ReplaceTags: true, ReplaceIngredients: true}))
	got, err = f.posts.GetByID(ctx, u.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	// Another user cannot update.
	other := testutil.CreateUser(t, f.db, "two@example.com")
	err = f.posts.Update(ctx, &models.Post{ID: post.ID, UserID: other.ID, Title: "x"}, []string{"title"}, PostRelations{})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "one@example.com")
	vegan := f.tag(t, u.ID, "Vegan")
	post := f.post(t, u.ID, "Curry", PostRelations{TagIDs: []uint{vegan.ID}})
	require.NoError(t, f.db.Model(post).Update("image", "uploads/post/main.jpg").Error)

	require.NoError(t, f.images.Create(ctx, u.ID, &models.Image{PostID: post.ID, Image: "uploads/post/extra.jpg"}))
	require.NoError(t, f.comments.Create(ctx, &models.PostComment{PostID: post.ID, UserID: u.ID, Text: "yum"}))
	require.NoError(t, f.rates.Upsert(ctx, &models.PostRate{PostID: post.ID, UserID: u.ID, Rate: 4}))

	files, err := f.posts.Delete(ctx, u.ID, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"uploads/post/main.jpg", "uploads/post/extra.jpg"}, files)

	for _, table := range []string{"posts", "post_tags", "images", "post_comments", "post_rates"} {
		var n int64
		require.NoError(t, f.db.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}
	var tags int64
	require.NoError(t, f.db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(1), tags, "tags outlive the posts they label")

	_, err = f.posts.Delete(ctx, u.ID, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestRateRepository_UpsertAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := testutil.CreateUser(t, f.db, "one@example.com")
	u2 := testutil.CreateUser(t, f.db, "two@example.com")
	post := f.post(t, u1.ID, "Curry", PostRelations{})

	first := &models.PostRate{PostID: post.ID, UserID: u1.ID, Rate: 2}
	require.NoError(t, f.rates.Upsert(ctx, first))
	again := &models.PostRate{PostID: post.ID, UserID: u1.ID, Rate: 5}
	require.NoError(t, f.rates.Upsert(ctx, again))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 5, again.Rate)
	require.NoError(t, f.rates.Upsert(ctx, &models.PostRate{PostID: post.ID, UserID: u2.ID, Rate: 3}))

	summary, err := f.rates.Summary(ctx, post.ID, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.InDelta(t, 4.0, summary.Average, 0.001)
	require.NotNil(t, summary.Mine)
	assert.Equal(t, 5, *summary.Mine)

	empty, err := f.rates.Summary(ctx, 999, u1.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.Mine)
}

func TestAddressRepository_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := testutil.CreateUser(t, f.db, "one@example.com")
	u2 := testutil.CreateUser(t, f.db, "two@example.com")

	code := 75001
	addr := &models.Address{UserID: u1.ID, Street: "1 Rue", City: "Paris", Postcode: &code}
	require.NoError(t, f.addresses.Create(ctx, addr))
	require.NoError(t, f.addresses.Create(ctx, &models.Address{UserID: u1.ID, City: "Lyon"}))

	list, err := f.addresses.List(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, addr.ID, list[0].ID)

	_, err = f.addresses.GetByID(ctx, u2.ID, addr.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	require.NoError(t, f.addresses.Update(ctx, &models.Address{ID: addr.ID, UserID: u1.ID, Postcode: nil}, []string{"postcode"}))
	got, err := f.addresses.GetByID(ctx, u1.ID, addr.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Postcode)
	assert.Equal(t, "Paris", got.City)

	assert.True(t, models.IsCode(f.addresses.Delete(ctx, u2.ID, addr.ID), models.CodeNotFound))
	require.NoError(t, f.addresses.Delete(ctx, u1.ID, addr.ID))
}

func TestUserRepository_CreateDuplicateAndDeleteCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := &models.User{Email: "cook@example.com", Password: "hash"}
	require.NoError(t, f.users.Create(ctx, user))
	err := f.users.Create(ctx, &models.User{Email: "cook@example.com", Password: "hash"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)

	found, err := f.users.GetByEmail(ctx, "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", found.Password)
	missing, err := f.users.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tag := f.tag(t, user.ID, "Vegan")
	post := f.post(t, user.ID, "Curry", PostRelations{TagIDs: []uint{tag.ID}})
	require.NoError(t, f.addresses.Create(ctx, &models.Address{UserID: user.ID, City: "Oslo"}))
	require.NoError(t, f.rates.Upsert(ctx, &models.PostRate{PostID: post.ID, UserID: user.ID, Rate: 1}))
	require.NoError(t, f.users.UpdateFields(ctx, user.ID, map[string]any{"avatar": "uploads/avatar/me.png"}))

	files, err := f.users.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/avatar/me.png"}, files)

	for _, table := range []string{"users", "posts", "tags", "addresses", "post_rates", "post_tags"} {
		var n int64
		require.NoError(t, f.db.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}
}

func TestUserRepository_TouchConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "one@example.com")

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, f.users.TouchConnection(ctx, u.ID, first))
	second := first.Add(time.Hour)
	require.NoError(t, f.users.TouchConnection(ctx, u.ID, second))

	got, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstConnection)
	require.NotNil(t, got.LastConnection)
	assert.True(t, got.FirstConnection.Equal(first))
	assert.True(t, got.LastConnection.Equal(second))
}

func TestPostRepository_GetByIDUsesOwnerScopedCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "one@example.com")
	post := f.post(t, u.ID, "Curry", PostRelations{})

	got, err := f.posts.GetByID(ctx, u.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostDetailKey(u.ID, post.ID)))

	cached, err := f.posts.GetByID(ctx, u.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Title, cached.Title)
	assert.Equal(t, u.ID, cached.UserID)
	assert.Equal(t, "5.00", cached.Price.String())

	require.NoError(t, f.posts.Update(ctx, &models.Post{ID: post.ID, UserID: u.ID, Title: "Soup"}, []string{"title"}, PostRelations{}))
	assert.False(t, mr.Exists(cache.PostDetailKey(u.ID, post.ID)))
}

func TestUserRepository_DeleteDropsCachedPosts(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "one@example.com")
	post := f.post(t, u.ID, "Curry", PostRelations{})

	_, err = f.posts.GetByID(ctx, u.ID, post.ID)
	require.NoError(t, err)
	_, err = f.rates.Summary(ctx, post.ID, u.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PostDetailKey(u.ID, post.ID)))
	require.True(t, mr.Exists(cache.RateSummaryKey(post.ID)))

	_, err = f.users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.PostDetailKey(u.ID, post.ID)))
	assert.False(t, mr.Exists(cache.RateSummaryKey(post.ID)))
	assert.False(t, mr.Exists(cache.UserKey(u.ID)))
}
