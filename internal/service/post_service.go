package service

import (
	"context"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/storage"
	"recipebox/internal/validation"
)

const msgNotAFile = "The submitted data was not a file. Check the encoding type on the form."

// ListPostsInput carries the raw query filters of a post listing.
type ListPostsInput struct {
	UserID      uint
	Tags        string
	Ingredients string
}

// WritePostInput is a create, full update or partial update of a post.
type WritePostInput struct {
	UserID  uint
	PostID  uint
	Form    Form
	Image   *Upload
	Partial bool
}

type PostService struct {
	posts       repository.PostRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	images      *ImageService
}

func NewPostService(
	posts repository.PostRepository,
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	images *ImageService,
) *PostService {
	return &PostService{posts: posts, tags: tags, ingredients: ingredients, images: images}
}

// List returns the caller's posts, newest first, optionally filtered by tag
// and ingredient ids.
func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	fe := models.FieldErrors{}
	var filter repository.PostFilter
	if strings.TrimSpace(in.Tags) != "" {
		ids, err := ParseIDList(in.Tags)
		if err != nil {
			fe.Add("tags", validation.MsgInvalidInt)
		}
		filter.TagIDs = ids
	}
	if strings.TrimSpace(in.Ingredients) != "" {
		ids, err := ParseIDList(in.Ingredients)
		if err != nil {
			fe.Add("ingredients", validation.MsgInvalidInt)
		}
		filter.IngredientIDs = ids
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	return s.posts.List(ctx, in.UserID, filter)
}

// Get returns one of the caller's posts with its relations and gallery.
func (s *PostService) Get(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, userID, postID)
}

// Create validates the form, stores an optional image and inserts the post.
func (s *PostService) Create(ctx context.Context, in WritePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	in.Partial = false
	post = &models.Post{UserID: in.UserID}
	_, rel, imageAction, err := s.bind(ctx, in, post)
	if err != nil {
		return nil, err
	}

	if imageAction == imageReplace {
		key, err := s.images.Store(ctx, storage.KindPost, "image", in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := s.posts.Create(ctx, post, rel); err != nil {
		s.images.Remove(ctx, post.Image)
		return nil, err
	}
	return s.posts.GetByID(ctx, in.UserID, post.ID)
}

// Update applies a PUT (Partial false) or PATCH (Partial true) to an owned post.
func (s *PostService) Update(ctx context.Context, in WritePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Update")
	defer func() { observability.EndSpan(span, err) }()

	current, err := s.posts.GetByID(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Tags, next.Ingredients, next.Images = nil, nil, nil
	columns, rel, imageAction, err := s.bind(ctx, in, &next)
	if err != nil {
		return nil, err
	}

	oldImage := current.Image
	switch imageAction {
	case imageReplace:
		key, err := s.images.Store(ctx, storage.KindPost, "image", in.Image)
		if err != nil {
			return nil, err
		}
		next.Image = key
		columns = append(columns, "image")
	case imageClear:
		next.Image = ""
		columns = append(columns, "image")
	}

	if err := s.posts.Update(ctx, &next, columns, rel); err != nil {
		if imageAction == imageReplace {
			s.images.Remove(ctx, next.Image)
		}
		return nil, err
	}
	if imageAction != imageKeep && oldImage != "" && oldImage != next.Image {
		s.images.Remove(ctx, oldImage)
	}
	return s.posts.GetByID(ctx, in.UserID, in.PostID)
}

// Delete removes an owned post and the media it referenced.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	files, err := s.posts.Delete(ctx, userID, postID)
	if err != nil {
		return err
	}
	s.images.Remove(ctx, files...)
	return nil
}

// AddImage attaches an uploaded picture to an owned post's gallery.
func (s *PostService) AddImage(ctx context.Context, userID, postID uint, up *Upload) (*models.Image, error) {
	return s.images.AddToPost(ctx, userID, postID, up)
}

type imageAction int

const (
	imageKeep imageAction = iota
	imageReplace
	imageClear
)

var zeroMin = 0

// bind validates in.Form into post and returns the columns to write. A full
// update resets omitted optional fields and clears omitted relations.
func (s *PostService) bind(ctx context.Context, in WritePostInput, post *models.Post) ([]string, repository.PostRelations, imageAction, error) {
	form := in.Form
	if form == nil {
		form = Form{}
	}
	partial := in.Partial
	fe := models.FieldErrors{}
	var columns []string

	set := func(column string, present bool) {
		if present {
			columns = append(columns, column)
		}
	}

	if v, ok := form.Text(fe, "title", true, partial); ok {
		post.Title = v
		set("title", true)
	}
	if v, ok := form.Int(fe, "time_minutes", true, partial, &zeroMin); ok {
		post.TimeMinutes = v
		set("time_minutes", true)
	}
	if v, ok := form.Price(fe, "price", true, partial); ok {
		post.Price = v
		set("price", true)
	}

	optionalText := []struct {
		name string
		dst  *string
	}{
		{"link", &post.Link},
		{"category", &post.Category},
		{"content", &post.Content},
	}
	for _, f := range optionalText {
		v, ok := form.Text(fe, f.name, false, partial)
		switch {
		case ok:
			*f.dst = v
			set(f.name, true)
		case !form.Has(f.name) && !partial:
			*f.dst = ""
			set(f.name, true)
		}
	}

	starCount, ok := form.Int(fe, "star_count", false, partial, &zeroMin)
	switch {
	case ok:
		post.StarCount = starCount
		set("star_count", true)
	case !form.Has("star_count") && !partial:
		post.StarCount = 0
		set("star_count", true)
	}

	action := imageKeep
	switch {
	case in.Image != nil:
		action = imageReplace
	case form.Has("image"):
		v := form["image"]
		if v.IsNull || (!v.IsList && len(v.Values) == 1 && strings.TrimSpace(v.Values[0]) == "") {
			action = imageClear
		} else {
			fe.Add("image", msgNotAFile)
		}
	}

	var rel repository.PostRelations
	if ids, ok := form.IDs(fe, "tags"); ok {
		rel.TagIDs, rel.ReplaceTags = ids, true
	} else if !form.Has("tags") && !partial {
		rel.ReplaceTags = true
	}
	if ids, ok := form.IDs(fe, "ingredients"); ok {
		rel.IngredientIDs, rel.ReplaceIngredients = ids, true
	} else if !form.Has("ingredients") && !partial {
		rel.ReplaceIngredients = true
	}

	if len(rel.TagIDs) > 0 {
		owned, err := s.tags.OwnedIDs(ctx, in.UserID, rel.TagIDs)
		if err != nil {
			return nil, rel, action, err
		}
		reportUnowned(fe, "tags", rel.TagIDs, owned)
	}
	if len(rel.IngredientIDs) > 0 {
		owned, err := s.ingredients.OwnedIDs(ctx, in.UserID, rel.IngredientIDs)
		if err != nil {
			return nil, rel, action, err
		}
		reportUnowned(fe, "ingredients", rel.IngredientIDs, owned)
	}

	if err := fe.Err(); err != nil {
		return nil, rel, action, err
	}
	return columns, rel, action, nil
}

func reportUnowned(fe models.FieldErrors, field string, ids, owned []uint) {
	ok := make(map[uint]struct{}, len(owned))
	for _, id := range owned {
		ok[id] = struct{}{}
	}
	for _, id := range ids {
		if _, found := ok[id]; !found {
			fe.Add(field, validation.InvalidPk(id))
		}
	}
}
