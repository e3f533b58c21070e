package domain

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Registration struct {
	Name       string `json:"name" validate:"required,min=3"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	RePassword string `json:"rePassword" validate:"required,eqfield=Password"`
	Phone      string `json:"phone" validate:"required,mobilephone"`
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetCode struct {
	ResetCode string `json:"resetCode" validate:"required,len=6,numeric"`
}

type PasswordReset struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required"`
	RePassword      string `json:"rePassword" validate:"required,eqfield=Password"`
}

// AuthResult is what sign-in, sign-up and password changes return. Token is
// empty when the endpoint does not issue one.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
