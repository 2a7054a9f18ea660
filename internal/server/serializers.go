package server

import (
	"time"

	"recipebox/internal/models"
)

// TagResponse is the public shape of a tag or an ingredient.
type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ImageResponse is a gallery picture.
type ImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

type postFields struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"`
	Price       models.Price `json:"price" swaggertype:"string" example:"5.00"`
	Link        string       `json:"link"`
	Category    string       `json:"category"`
	Content     string       `json:"content"`
	StarCount   int          `json:"star_count"`
	Image       *string      `json:"image"`
}

// PostResponse is used by list, create and update responses. Relations are ids.
type PostResponse struct {
	postFields
	Tags        []uint `json:"tags"`
	Ingredients []uint `json:"ingredients"`
}

// PostDetailResponse nests relations and the gallery.
type PostDetailResponse struct {
	postFields
	Tags        []TagResponse   `json:"tags"`
	Ingredients []TagResponse   `json:"ingredients"`
	Images      []ImageResponse `json:"images"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Country   string    `json:"country"`
	Birthday  *string   `json:"birthday"`
	Age       int       `json:"age"`
	Status    string    `json:"status"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	Post      uint      `json:"post"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type RateResponse struct {
	ID   uint `json:"id"`
	Post uint `json:"post"`
	Rate int  `json:"rate"`
}

// mediaURL resolves a stored key, leaving empty references null.
func (s *Server) mediaURL(key string) *string {
	if key == "" {
		return nil
	}
	u := s.store.URL(key)
	return &u
}

func (s *Server) basePost(p *models.Post) postFields {
	return postFields{
		ID:          p.ID,
		Title:       p.Title,
		TimeMinutes: p.TimeMinutes,
		Price:       p.Price,
		Link:        p.Link,
		Category:    p.Category,
		Content:     p.Content,
		StarCount:   p.StarCount,
		Image:       s.mediaURL(p.Image),
	}
}

func (s *Server) postResponse(p *models.Post) PostResponse {
	return PostResponse{
		postFields:  s.basePost(p),
		Tags:        p.TagIDs(),
		Ingredients: p.IngredientIDs(),
	}
}

func (s *Server) postResponses(posts []*models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.postResponse(p))
	}
	return out
}

func (s *Server) postDetailResponse(p *models.Post) PostDetailResponse {
	out := PostDetailResponse{
		postFields:  s.basePost(p),
		Tags:        make([]TagResponse, 0, len(p.Tags)),
		Ingredients: make([]TagResponse, 0, len(p.Ingredients)),
		Images:      make([]ImageResponse, 0, len(p.Images)),
	}
	for _, t := range p.Tags {
		out.Tags = append(out.Tags, TagResponse{ID: t.ID, Name: t.Name})
	}
	for _, i := range p.Ingredients {
		out.Ingredients = append(out.Ingredients, TagResponse{ID: i.ID, Name: i.Name})
	}
	for i := range p.Images {
		out.Images = append(out.Images, s.imageResponse(&p.Images[i]))
	}
	return out
}

func (s *Server) imageResponse(img *models.Image) ImageResponse {
	return ImageResponse{ID: img.ID, Image: s.mediaURL(img.Image)}
}

func tagResponses(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name})
	}
	return out
}

func ingredientResponses(items []models.Ingredient) []TagResponse {
	out := make([]TagResponse, 0, len(items))
	for _, i := range items {
		out = append(out, TagResponse{ID: i.ID, Name: i.Name})
	}
	return out
}

func (s *Server) userResponse(u *models.User) UserResponse {
	out := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Country:   u.Country,
		Age:       u.Age,
		Status:    u.Status,
		Avatar:    s.mediaURL(u.Avatar),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Birthday != nil {
		b := u.Birthday.Format(time.DateOnly)
		out.Birthday = &b
	}
	return out
}

func commentResponse(c *models.PostComment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Post:      c.PostID,
		Title:     c.Title,
		Text:      c.Text,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
	}
}
