package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFilter struct {
	Active *bool  `json:"active"`
	Search string `json:"search"`
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *entity.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

func (r *UserRepository) Update(user *entity.User) error {
	return r.db.Omit(clause.Associations).Save(user).Error
}

func (r *UserRepository) FindByID(id uuid.UUID) (*entity.User, error) {
	return findByID[entity.User](r.db, id)
}

func (r *UserRepository) List(filter UserFilter) ([]entity.User, error) {
	q := r.db
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}
	q = searchClause(q, filter.Search, "username", "full_name", "email")

	var users []entity.User
	err := q.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListByIDs(ids []uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.Where("id IN ?", ids).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ExistsByUsername(username string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.User](r.db, excludeID, "LOWER(username) = LOWER(?)", username)
}

func (r *UserRepository) ExistsByEmail(email string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.User](r.db, excludeID, "LOWER(email) = LOWER(?)", email)
}

func (r *UserRepository) Count() (int64, error) {
	return countWhere[entity.User](r.db, "")
}

func (r *UserRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.User{}, "id = ?", id).Error
}
