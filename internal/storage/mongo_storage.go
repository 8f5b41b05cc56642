package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStorage struct {
	posts *mongo.Collection
	users *mongo.Collection
}

func addIndex(collection *mongo.Collection, field string) {
	index := mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), index)
	if err != nil {
		panic(err)
	}
}

func (s *MongoStorage) AddPost(ctx context.Context, post models.Post) (models.PostID, error) {
	if post.AuthorId == "" {
		return "", models.ErrUnauthorized
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt

	insertResult, err := s.posts.InsertOne(ctx, post)
	if err != nil {
		return "", err
	}
	return models.PostID(insertResult.InsertedID.(primitive.ObjectID).Hex()), nil
}

func (s *MongoStorage) GetPost(ctx context.Context, postId models.PostID) (models.Post, error) {
	id, err := primitive.ObjectIDFromHex(string(postId))
	if err != nil {
		return models.Post{}, models.ErrNotFound
	}

	var result models.Post
	err = s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, models.ErrNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	result.Id = postId
	return result, nil
}

func (s *MongoStorage) UpdatePost(ctx context.Context, postId models.PostID, update models.PostUpdate) (models.Post, error) {
	id, err := primitive.ObjectIDFromHex(string(postId))
	if err != nil {
		return models.Post{}, models.ErrNotFound
	}

	set := bson.M{"updatedat": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.AuthorName != nil {
		set["authorname"] = *update.AuthorName
	}
	if update.ImageId != nil {
		set["imageid"] = *update.ImageId
	}
	if update.Like != nil {
		set["like"] = *update.Like
	}
	if update.Permissions != nil {
		set["permissions"] = update.Permissions
	}

	var result models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, models.ErrNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	result.Id = postId
	return result, nil
}

func (s *MongoStorage) DeletePost(ctx context.Context, postId models.PostID) error {
	id, err := primitive.ObjectIDFromHex(string(postId))
	if err != nil {
		return models.ErrNotFound
	}
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoStorage) ListPosts(ctx context.Context, filter Filter, page int, size int) (models.PostsPage, error) {
	if page < 1 || size < 1 || size > MaxPageSize {
		return models.PostsPage{}, models.ErrBadRequest
	}

	query := bson.M{}
	if filter.AuthorId != "" {
		query["authorid"] = filter.AuthorId
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := s.posts.CountDocuments(ctx, query)
	if err != nil {
		return models.PostsPage{}, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdat", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
	cur, err := s.posts.Find(ctx, query, findOptions)
	if err != nil {
		return models.PostsPage{}, err
	}
	defer cur.Close(ctx)

	posts := make([]models.Post, 0)
	for cur.Next(ctx) {
		var elem models.Post
		if err := cur.Decode(&elem); err != nil {
			return models.PostsPage{}, err
		}
		var id hexId
		if err := cur.Decode(&id); err != nil {
			return models.PostsPage{}, err
		}
		elem.Id = models.PostID(id.ID.Hex())
		posts = append(posts, elem)
	}
	if err := cur.Err(); err != nil {
		return models.PostsPage{}, err
	}

	result := models.PostsPage{Posts: posts, Total: total}
	if int64(page*size) < total {
		result.NextPage = fmt.Sprint(page + 1)
	}
	return result, nil
}

type hexId struct {
	ID primitive.ObjectID `bson:"_id"`
}

func (s *MongoStorage) AddUser(ctx context.Context, user models.User) (models.UserID, error) {
	err := s.users.FindOne(ctx, bson.M{"email": user.Email}).Err()
	if err == nil {
		return "", models.ErrEmailTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	insertResult, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return "", err
	}
	return models.UserID(insertResult.InsertedID.(primitive.ObjectID).Hex()), nil
}

func (s *MongoStorage) GetUser(ctx context.Context, userId models.UserID) (models.User, error) {
	id, err := primitive.ObjectIDFromHex(string(userId))
	if err != nil {
		return models.User{}, models.ErrNotFound
	}
	var result models.User
	err = s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	result.Id = userId
	return result, nil
}

func (s *MongoStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	raw, err := s.users.FindOne(ctx, bson.M{"email": email}).DecodeBytes()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	var result models.User
	if err := bson.Unmarshal(raw, &result); err != nil {
		return models.User{}, err
	}
	var id hexId
	if err := bson.Unmarshal(raw, &id); err != nil {
		return models.User{}, err
	}
	result.Id = models.UserID(id.ID.Hex())
	return result, nil
}

func (s *MongoStorage) UpdateUser(ctx context.Context, userId models.UserID, update models.UserUpdate) (models.User, error) {
	id, err := primitive.ObjectIDFromHex(string(userId))
	if err != nil {
		return models.User{}, models.ErrNotFound
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.PasswordHash != nil {
		set["passwordhash"] = *update.PasswordHash
	}
	if update.SessionEpoch != nil {
		set["sessionepoch"] = *update.SessionEpoch
	}

	var result models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	result.Id = userId
	return result, nil
}

func (s *MongoStorage) DeleteUser(ctx context.Context, userId models.UserID) error {
	id, err := primitive.ObjectIDFromHex(string(userId))
	if err != nil {
		return models.ErrNotFound
	}
	result, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func NewMongoStorage(mongoUrl string, mongoDbName string) *MongoStorage {
	clientOptions := options.Client().ApplyURI(mongoUrl)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatal(err)
	}

	if err := client.Ping(context.TODO(), nil); err != nil {
		log.Fatal(err)
	}

	posts := client.Database(mongoDbName).Collection("posts")
	users := client.Database(mongoDbName).Collection("users")

	addIndex(posts, "authorid")
	addIndex(posts, "status")
	addIndex(posts, "createdat")

	if _, err := users.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		panic(err)
	}

	return &MongoStorage{
		posts: posts,
		users: users,
	}
}
