package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/mailer"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserDTO, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// ResolveSession validates a session token and confirms its user still exists.
	ResolveSession(ctx context.Context, token string) (*dto.SessionClaims, error)
	Logout(ctx context.Context, session *dto.SessionClaims) error
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	userCache      *memory.UserCache
	blocklist      contract.TokenBlocklist
	emailService   mailer.IEmailService
	eventPublisher IPublisherService
	log            logger.ILogger
	cfg            config.AuthConfig
	queryTimeout   time.Duration
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	userCache *memory.UserCache,
	blocklist contract.TokenBlocklist,
	emailService mailer.IEmailService,
	eventPublisher IPublisherService,
	log logger.ILogger,
	cfg config.AuthConfig,
	queryTimeout time.Duration,
) IAuthService {
	if cfg.BcryptCost < bcrypt.MinCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &authService{
		uowFactory:     uowFactory,
		userCache:      userCache,
		blocklist:      blocklist,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		log:            log,
		cfg:            cfg,
		queryTimeout:   queryTimeout,
	}
}

func toUserDTO(user *entity.User) *dto.UserDTO {
	return &dto.UserDTO{
		Id:        user.Id,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserDTO, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check for existing user
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	// 3. Save. The unique index still guards against a concurrent insert
	// slipping past the check above.
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, contract.ErrEmailTaken) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	if err := uow.Commit(); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	s.log.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id})

	go func(email string) {
		if err := s.emailService.SendWelcome(email); err != nil {
			s.log.Warn("AUTH", "Welcome email not delivered", map[string]interface{}{"user_id": user.Id, "error": err.Error()})
		}
	}(user.Email)

	s.eventPublisher.Publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"user_id": user.Id,
	}))

	return toUserDTO(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check if user exists
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Compare passwords
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. Generate JWT
	expiresAt := time.Now().Add(s.cfg.SessionTTL)
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"jti":     uuid.NewString(),
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.userCache.Save(user)

	s.eventPublisher.Publish(ctx, events.New(events.UserLogin, map[string]interface{}{
		"user_id": user.Id,
		"time":    time.Now().Format(time.RFC822),
	}))

	return &dto.LoginResponse{
		Token:     signedToken,
		ExpiresAt: expiresAt,
		User:      *toUserDTO(user),
	}, nil
}

func (s *authService) parseToken(tokenString string) (*dto.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}

	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrUnauthenticated
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrUnauthenticated
	}

	return &dto.SessionClaims{UserId: userId, TokenId: jti, ExpiresAt: exp.Time}, nil
}

func (s *authService) ResolveSession(ctx context.Context, tokenString string) (*dto.SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blocklist.IsRevoked(ctx, session.TokenId)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	if _, ok := s.userCache.Get(session.UserId); ok {
		return session, nil
	}

	user, err := s.loadUser(ctx, session.UserId)
	if err != nil {
		return nil, err
	}
	s.userCache.Save(user)

	return session, nil
}

func (s *authService) loadUser(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, session *dto.SessionClaims) error {
	if session == nil {
		return nil
	}

	if err := s.blocklist.Revoke(ctx, session.TokenId, time.Until(session.ExpiresAt)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.userCache.Delete(session.UserId)

	s.eventPublisher.Publish(ctx, events.New(events.UserLogout, map[string]interface{}{
		"user_id": session.UserId,
	}))
	return nil
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error) {
	if user, ok := s.userCache.Get(userId); ok {
		return toUserDTO(user), nil
	}

	user, err := s.loadUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	s.userCache.Save(user)
	return toUserDTO(user), nil
}
