package app

import (
	"gorm.io/gorm"

	"github.com/edpsychconnect/backend/internal/logger"
	"github.com/edpsychconnect/backend/internal/repos"
)

type Repos struct {
	User           repos.UserRepo
	UserToken      repos.UserTokenRepo
	Subscription   repos.SubscriptionRepo
	Course         repos.CourseRepo
	CourseModule   repos.CourseModuleRepo
	Enrollment     repos.EnrollmentRepo
	ModuleProgress repos.ModuleProgressRepo
	Goal           repos.GoalRepo
	GoalComment    repos.GoalCommentRepo
	ContentPage    repos.ContentPageRepo
	ContentChange  repos.ContentChangeRepo
	Credential     repos.CredentialRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:           repos.NewUserRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Subscription:   repos.NewSubscriptionRepo(db, log),
		Course:         repos.NewCourseRepo(db, log),
		CourseModule:   repos.NewCourseModuleRepo(db, log),
		Enrollment:     repos.NewEnrollmentRepo(db, log),
		ModuleProgress: repos.NewModuleProgressRepo(db, log),
		Goal:           repos.NewGoalRepo(db, log),
		GoalComment:    repos.NewGoalCommentRepo(db, log),
		ContentPage:    repos.NewContentPageRepo(db, log),
		ContentChange:  repos.NewContentChangeRepo(db, log),
		Credential:     repos.NewCredentialRepo(db, log),
	}
}
