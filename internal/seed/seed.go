package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumGroups       int
	NumPosts        int
	CommentsPerPost int
	FollowsPerUser  int
	ShouldClean     bool
	SkipBcrypt      bool
	DryRun          bool
	BatchSize       int
	MaxDays         int
	// RandomSeed makes runs reproducible when non-zero.
	RandomSeed int64
}

// DefaultOptions is a small but browsable data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:        10,
		NumGroups:       4,
		NumPosts:        60,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		BatchSize:       100,
		MaxDays:         90,
	}
}

// Result summarizes what a run created.
type Result struct {
	Users    []models.User
	Groups   []models.Group
	Posts    int
	Comments int
	Follows  int
}

// Seed populates the database with demo data
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	res := &Result{}

	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		res.Users = append(res.Users, *user)
	}
	log.Printf("%d users created", len(res.Users))

	for i := 0; i < opts.NumGroups; i++ {
		group, err := f.CreateGroup()
		if err != nil {
			return nil, fmt.Errorf("failed to create groups: %w", err)
		}
		res.Groups = append(res.Groups, *group)
	}
	log.Printf("%d groups created", len(res.Groups))

	if len(res.Users) == 0 {
		return res, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := &res.Users[f.rng.Intn(len(res.Users))]
		posts = append(posts, f.BuildPost(author, res.Groups))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = len(posts)
	log.Printf("%d posts created", res.Posts)

	for _, post := range posts {
		for j := 0; j < opts.CommentsPerPost; j++ {
			commenter := &res.Users[f.rng.Intn(len(res.Users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return nil, fmt.Errorf("failed to create comments: %w", err)
			}
			res.Comments++
		}
	}

	for i := range res.Users {
		user := &res.Users[i]
		others := lo.Filter(res.Users, func(u models.User, _ int) bool { return u.ID != user.ID })
		for _, author := range lo.Samples(others, opts.FollowsPerUser) {
			if err := f.CreateFollow(user, &author); err != nil {
				return nil, fmt.Errorf("failed to create follows: %w", err)
			}
			res.Follows++
		}
	}
	log.Printf("%d comments and %d follows created", res.Comments, res.Follows)

	log.Println("Database seeding completed successfully")
	return res, nil
}

// clearData empties every content table, children first.
func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Follow{}, &models.Comment{}, &models.Post{}, &models.Group{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
