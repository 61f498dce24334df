package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultAvatar = "default-avatar.jpg"
)

// UserModel is an account that can author posts and comments.
type UserModel struct {
	Base     `bson:",inline"`
	Name     string `json:"name"   bson:"name"     gorm:"type:varchar(50);not null"`
	Email    string `json:"email"  bson:"email"    gorm:"type:varchar(191);uniqueIndex;not null"`
	Password string `json:"-"      bson:"password" gorm:"not null"`
	Avatar   string `json:"avatar" bson:"avatar"`
	Bio      string `json:"bio"    bson:"bio"      gorm:"type:varchar(2000)"`
	Role     string `json:"role"   bson:"role"     gorm:"type:varchar(16);default:user"`
}

func (UserModel) TableName() string { return "users" }

// IsAdmin reports whether the account holds the admin role.
func (u *UserModel) IsAdmin() bool { return u.Role == RoleAdmin }
