package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

type PostRepository interface {
	// All returns every post with its creator preloaded, in no particular order.
	All(ctx context.Context) ([]models.Post, error)
	// ByUser returns the posts created by userID, newest first.
	ByUser(ctx context.Context, userID string) ([]models.Post, error)
	ByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, p *models.Post) error
	Save(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id string) error
	// Mutate loads the post with a write lock, lets fn change it and saves
	// the result, all in one transaction. fn errors abort the transaction.
	Mutate(ctx context.Context, id string, fn func(p *models.Post) error) (*models.Post, error)
}

type CommentRepository interface {
	// ByPost returns the comments of postID, newest first.
	ByPost(ctx context.Context, postID string) ([]models.Comment, error)
	ByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Save(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) error
}

// Repos bundles the repositories sharing one connection or transaction.
type Repos interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	// Transaction runs fn with repositories bound to a single transaction.
	Transaction(ctx context.Context, fn func(r Repos) error) error
}

type gormRepos struct {
	db *gorm.DB
}

func NewRepos(db *gorm.DB) Repos {
	return &gormRepos{db: db}
}

func (r *gormRepos) Users() UserRepository       { return &userRepo{db: r.db} }
func (r *gormRepos) Posts() PostRepository       { return &postRepo{db: r.db} }
func (r *gormRepos) Comments() CommentRepository { return &commentRepo{db: r.db} }

func (r *gormRepos) Transaction(ctx context.Context, fn func(r Repos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepos{db: tx})
	})
}

// translate maps gorm errors onto the common taxonomy. Anything unknown is
// an internal error; the original error stays in the chain for logging.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return common.ErrConflict
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrForbidden),
		errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInternal):
		return err
	default:
		return errors.Join(common.ErrInternal, err)
	}
}

// --- users ---

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// --- posts ---

type postRepo struct {
	db *gorm.DB
}

func (r *postRepo) All(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Preload("User").Find(&posts).Error; err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func (r *postRepo) ByUser(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id").
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func (r *postRepo) ByID(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepo) Create(ctx context.Context, p *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return translate(err)
	}
	return r.preloadUser(ctx, p)
}

func (r *postRepo) Save(ctx context.Context, p *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return translate(err)
	}
	return r.preloadUser(ctx, p)
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *postRepo) Mutate(ctx context.Context, id string, fn func(p *models.Post) error) (*models.Post, error) {
	var out models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// SQLite has no row locks; its single-writer transaction serialises instead.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&out, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&out).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	if err := r.preloadUser(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postRepo) preloadUser(ctx context.Context, p *models.Post) error {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", p.UserID).Error; err != nil {
		return translate(err)
	}
	p.User = &u
	return nil
}

// --- comments ---

type commentRepo struct {
	db *gorm.DB
}

func (r *commentRepo) ByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at desc").Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

func (r *commentRepo) ByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return translate(err)
	}
	return r.preloadUser(ctx, c)
}

func (r *commentRepo) Save(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error; err != nil {
		return translate(err)
	}
	return r.preloadUser(ctx, c)
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *commentRepo) DeleteByPost(ctx context.Context, postID string) error {
	return translate(r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error)
}

func (r *commentRepo) preloadUser(ctx context.Context, c *models.Comment) error {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", c.UserID).Error; err != nil {
		return translate(err)
	}
	c.User = &u
	return nil
}
