package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPostRepository keeps posts in MongoDB and joins authors and likes from
// the relational repositories.
type MongoPostRepository struct {
	collection *mongo.Collection
	users      UserRepository
	likes      LikeRepository
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database, users UserRepository, likes LikeRepository) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection("posts"),
		users:      users,
		likes:      likes,
	}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	preparePost(post)
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	posts := []models.Post{post}
	if err := r.join(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts retrieves posts ordered by creation time
func (r *MongoPostRepository) ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	direction := -1
	if q.Ascending {
		direction = 1
	}
	filter := bson.M{}
	if q.UserID != "" {
		filter["user_id"] = q.UserID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: direction}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	if err := r.join(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post and its likes
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	if err := r.likes.DeleteLikesByPostID(ctx, id); err != nil {
		return fmt.Errorf("delete likes of post %s: %w", id, err)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// join fills Author and Likes of each post in place
func (r *MongoPostRepository) join(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !seen[p.UserID] {
			seen[p.UserID] = true
			userIDs = append(userIDs, p.UserID)
		}
	}

	users, err := r.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}
	userMap := make(map[string]models.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	likes, err := r.likes.GetLikesByPostIDs(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	likeMap := make(map[string][]models.Like)
	for _, l := range likes {
		likeMap[l.PostID] = append(likeMap[l.PostID], l)
	}

	for i := range posts {
		posts[i].Author = userMap[posts[i].UserID]
		posts[i].Likes = likeMap[posts[i].ID]
	}
	return nil
}
