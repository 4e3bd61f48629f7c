package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"time"

	"app/internal/domain/model"
	"app/internal/logging"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 24 * time.Hour

type AuthUsecase struct {
	users     repo.UserRepository
	blacklist repo.TokenBlacklist
	jwtSecret []byte
}

func NewAuthUsecase(users repo.UserRepository, blacklist repo.TokenBlacklist, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		blacklist: blacklist,
		jwtSecret: []byte(jwtSecret),
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserOutput struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type TokenOutput struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type LoginOutput struct {
	User  UserOutput  `json:"user"`
	Token TokenOutput `json:"token"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserOutput, error) {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if err == repo.ErrDuplicateEmail {
			return UserOutput{}, NewHTTPError(http.StatusConflict, "email already registered")
		}
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	logging.FromCtx(ctx).Info("user registered", "user_id", user.ID)
	return toUserOutput(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		//存在有無を漏らさないため同じメッセージで返す
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := u.issueToken(user)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		//最終ログイン時刻の記録失敗はログインを止めない
		logging.FromCtx(ctx).Warn("failed to update last login", "user_id", user.ID)
	}

	return LoginOutput{
		User: toUserOutput(user),
		Token: TokenOutput{
			AccessToken: token,
			ExpiresIn:   int(accessTokenTTL.Seconds()),
		},
	}, nil
}

// Logoutはトークンのjtiを残り有効期間だけ失効リストへ入れる。
// Redis未接続の構成では失効リストなしで成功扱い
func (u *AuthUsecase) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if u.blacklist == nil || jti == "" {
		return nil
	}

	if err := u.blacklist.Add(ctx, jti, time.Until(expiresAt)); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return nil
}

func (u *AuthUsecase) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(u.jwtSecret)
}

func toUserOutput(user *model.User) UserOutput {
	return UserOutput{
		ID:       user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
		IsActive: user.IsActive,
	}
}
