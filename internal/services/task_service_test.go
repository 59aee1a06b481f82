package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todolist-api/internal/database"
	"github.com/yukikurage/todolist-api/internal/logging"
	"github.com/yukikurage/todolist-api/internal/models"
	"github.com/yukikurage/todolist-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeSuggester struct {
	tasks []GeneratedTask
	err   error
	text  string
}

func (f *fakeSuggester) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	f.text = text
	return f.tasks, f.err
}

// TaskServiceTestSuite drives the task lifecycle against in-memory SQLite
type TaskServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	service   *TaskService
	suggester *fakeSuggester

	red, blue               *models.Team
	alice, bob, carol, dave *models.User
}

func (suite *TaskServiceTestSuite) SetupTest() {
	var err error
	suite.ctx = context.Background()
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(database.AutoMigrate(suite.db))

	suite.suggester = &fakeSuggester{}
	suite.service = NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProfileRepository(suite.db),
		suite.suggester,
		logging.Discard(),
	)

	suite.red = suite.createTeam("red")
	suite.blue = suite.createTeam("blue")
	suite.alice = suite.createMember("alice", suite.red.ID)
	suite.bob = suite.createMember("bob", suite.red.ID)
	suite.carol = suite.createMember("carol", suite.blue.ID)

	// dave signed up but never onboarded
	suite.dave = &models.User{Username: "dave", PasswordHash: "hash"}
	suite.Require().NoError(suite.db.Create(suite.dave).Error)
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTeam(name string) *models.Team {
	team := &models.Team{Name: name}
	suite.Require().NoError(suite.db.Create(team).Error)
	return team
}

func (suite *TaskServiceTestSuite) createMember(username string, teamID uint64) *models.User {
	user := &models.User{Username: username, PasswordHash: "hash"}
	suite.Require().NoError(suite.db.Create(user).Error)
	profile := &models.Profile{UserID: user.ID, HasSigned: true, TeamID: teamID, Reputation: models.DefaultReputation}
	suite.Require().NoError(suite.db.Create(profile).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTask(creator *models.User, v models.Visibility, d models.Difficulty) *models.Task {
	task, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{
		Name:       "task by " + creator.Username,
		Visibility: v,
		Difficulty: d,
		CreatorID:  creator.ID,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) reputation(user *models.User) uint64 {
	var profile models.Profile
	suite.Require().NoError(suite.db.First(&profile, "user_id = ?", user.ID).Error)
	return profile.Reputation
}

func (suite *TaskServiceTestSuite) TestCreateTask_Defaults() {
	task, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{
		Name:      "  water plants  ",
		CreatorID: suite.alice.ID,
	})
	suite.Require().NoError(err)

	suite.Equal("water plants", task.Name)
	suite.Equal(models.VisibilityPublic, task.Visibility)
	suite.Equal(models.DifficultyOK, task.Difficulty)
	suite.Equal(models.TaskStatusNew, task.Status)
	suite.Equal(suite.alice.ID, task.CreatorID)
	suite.Equal("alice", task.Creator.Username)
	suite.Nil(task.CompletedByID)
}

func (suite *TaskServiceTestSuite) TestCreateTask_Validation() {
	cases := []struct {
		name  string
		input CreateTaskInput
		want  error
	}{
		{"empty name", CreateTaskInput{Name: "   "}, ErrTaskNameRequired},
		{"long name", CreateTaskInput{Name: strings.Repeat("a", 65)}, ErrTaskNameTooLong},
		{"long description", CreateTaskInput{Name: "a", Description: strings.Repeat("d", 129)}, ErrTaskDescriptionTooLong},
		{"bad visibility", CreateTaskInput{Name: "a", Visibility: "friends"}, ErrInvalidVisibility},
		{"bad difficulty", CreateTaskInput{Name: "a", Difficulty: "legendary"}, ErrInvalidDifficulty},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			tc.input.CreatorID = suite.alice.ID
			_, err := suite.service.CreateTask(suite.ctx, tc.input)
			suite.ErrorIs(err, tc.want)
			suite.ErrorIs(err, ErrInvalidTaskInput)
		})
	}

	_, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{Name: strings.Repeat("é", 64), CreatorID: suite.alice.ID})
	suite.NoError(err, "limits count characters, not bytes")
}

func (suite *TaskServiceTestSuite) TestCreateTask_RequiresProfile() {
	_, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{Name: "a", CreatorID: suite.dave.ID})
	suite.ErrorIs(err, ErrProfileRequired)
}

func (suite *TaskServiceTestSuite) TestCompleteAndClose_RewardsCompleter() {
	task := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyHard)

	completed, err := suite.service.CompleteTask(suite.ctx, task.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, completed.Status)
	suite.Require().NotNil(completed.CompletedByID)
	suite.Equal(suite.bob.ID, *completed.CompletedByID)
	suite.Equal(uint64(1), suite.reputation(suite.bob), "completing alone never rewards")

	closed, err := suite.service.CloseTask(suite.ctx, task.ID, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusClosed, closed.Status)
	suite.Require().NotNil(closed.CompletedBy)
	suite.Equal("bob", closed.CompletedBy.Username)

	suite.Equal(uint64(26), suite.reputation(suite.bob))
	suite.Equal(uint64(1), suite.reputation(suite.alice))
}

func (suite *TaskServiceTestSuite) TestCompleteOwnTask_ClosesWithoutReward() {
	task := suite.createTask(suite.alice, models.VisibilityPrivate, models.DifficultyNightmare)

	done, err := suite.service.CompleteTask(suite.ctx, task.ID, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusClosed, done.Status)
	suite.Require().NotNil(done.CompletedByID)
	suite.Equal(suite.alice.ID, *done.CompletedByID)
	suite.Equal(uint64(1), suite.reputation(suite.alice))

	_, err = suite.service.CloseTask(suite.ctx, task.ID, suite.alice.ID)
	suite.ErrorIs(err, ErrInvalidTaskState)
	suite.Equal(uint64(1), suite.reputation(suite.alice))
}

func (suite *TaskServiceTestSuite) TestCompleteTask_Visibility() {
	teamTask := suite.createTask(suite.alice, models.VisibilityTeamOnly, models.DifficultyEasy)
	privateTask := suite.createTask(suite.alice, models.VisibilityPrivate, models.DifficultyEasy)

	_, err := suite.service.CompleteTask(suite.ctx, teamTask.ID, suite.carol.ID)
	suite.ErrorIs(err, ErrInvalidTaskState, "other team")

	_, err = suite.service.CompleteTask(suite.ctx, privateTask.ID, suite.bob.ID)
	suite.ErrorIs(err, ErrInvalidTaskState, "private task of a teammate")

	done, err := suite.service.CompleteTask(suite.ctx, teamTask.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, done.Status)
}

func (suite *TaskServiceTestSuite) TestCompleteTask_Errors() {
	task := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyEasy)

	_, err := suite.service.CompleteTask(suite.ctx, task.ID, suite.dave.ID)
	suite.ErrorIs(err, ErrProfileRequired)

	_, err = suite.service.CompleteTask(suite.ctx, 9999, suite.bob.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.service.CompleteTask(suite.ctx, task.ID, suite.bob.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CompleteTask(suite.ctx, task.ID, suite.carol.ID)
	suite.ErrorIs(err, ErrInvalidTaskState, "already completed")

	removed := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyEasy)
	suite.Require().NoError(suite.service.DeleteTask(suite.ctx, removed.ID, suite.alice.ID))
	_, err = suite.service.CompleteTask(suite.ctx, removed.ID, suite.bob.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestCloseTask_Errors() {
	task := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyHeroic)

	_, err := suite.service.CloseTask(suite.ctx, task.ID, suite.alice.ID)
	suite.ErrorIs(err, ErrInvalidTaskState, "still new")

	_, err = suite.service.CompleteTask(suite.ctx, task.ID, suite.bob.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CloseTask(suite.ctx, task.ID, suite.bob.ID)
	suite.ErrorIs(err, ErrTaskNotFound, "only the creator can close")

	_, err = suite.service.CloseTask(suite.ctx, 9999, suite.alice.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.service.CloseTask(suite.ctx, task.ID, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(uint64(101), suite.reputation(suite.bob))

	_, err = suite.service.CloseTask(suite.ctx, task.ID, suite.alice.ID)
	suite.ErrorIs(err, ErrInvalidTaskState, "already closed")
	suite.Equal(uint64(101), suite.reputation(suite.bob))
}

func (suite *TaskServiceTestSuite) TestCloseTask_ConcurrentAwardsOnce() {
	task := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyNightmare)
	_, err := suite.service.CompleteTask(suite.ctx, task.ID, suite.bob.ID)
	suite.Require().NoError(err)

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.CloseTask(suite.ctx, task.ID, suite.alice.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		suite.ErrorIs(err, ErrInvalidTaskState)
	}
	suite.Equal(1, succeeded)
	suite.Equal(uint64(501), suite.reputation(suite.bob))
}

func (suite *TaskServiceTestSuite) TestUpdateTask() {
	task := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyEasy)

	name := "renamed"
	visibility := models.VisibilityTeamOnly
	updated, err := suite.service.UpdateTask(suite.ctx, task.ID, suite.alice.ID, UpdateTaskInput{
		Name:       &name,
		Visibility: &visibility,
	})
	suite.Require().NoError(err)
	suite.Equal("renamed", updated.Name)
	suite.Equal(models.VisibilityTeamOnly, updated.Visibility)
	suite.Equal(models.DifficultyEasy, updated.Difficulty)

	_, err = suite.service.UpdateTask(suite.ctx, task.ID, suite.bob.ID, UpdateTaskInput{Name: &name})
	suite.ErrorIs(err, ErrTaskNotFound, "not the creator")

	empty := ""
	_, err = suite.service.UpdateTask(suite.ctx, task.ID, suite.alice.ID, UpdateTaskInput{Name: &empty})
	suite.ErrorIs(err, ErrTaskNameRequired)

	_, err = suite.service.CompleteTask(suite.ctx, task.ID, suite.bob.ID)
	suite.Require().NoError(err)

	_, err = suite.service.UpdateTask(suite.ctx, task.ID, suite.alice.ID, UpdateTaskInput{Name: &name})
	suite.ErrorIs(err, ErrInvalidTaskState)
}

func (suite *TaskServiceTestSuite) TestDeleteTask() {
	task := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyEasy)

	suite.ErrorIs(suite.service.DeleteTask(suite.ctx, task.ID, suite.bob.ID), ErrTaskNotFound)
	suite.Require().NoError(suite.service.DeleteTask(suite.ctx, task.ID, suite.alice.ID))
	suite.ErrorIs(suite.service.DeleteTask(suite.ctx, task.ID, suite.alice.ID), ErrTaskNotFound)

	_, err := suite.service.GetTask(suite.ctx, task.ID, suite.alice.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	completed := suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyEasy)
	_, err = suite.service.CompleteTask(suite.ctx, completed.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.ErrorIs(suite.service.DeleteTask(suite.ctx, completed.ID, suite.alice.ID), ErrInvalidTaskState)

	suite.Equal(uint64(1), suite.reputation(suite.alice))
	suite.Equal(uint64(1), suite.reputation(suite.bob))
}

func (suite *TaskServiceTestSuite) TestGetTask() {
	task := suite.createTask(suite.alice, models.VisibilityTeamOnly, models.DifficultyEasy)

	got, err := suite.service.GetTask(suite.ctx, task.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Equal(task.ID, got.ID)

	_, err = suite.service.GetTask(suite.ctx, task.ID, suite.carol.ID)
	suite.ErrorIs(err, ErrInvalidTaskState)

	_, err = suite.service.GetTask(suite.ctx, task.ID, suite.dave.ID)
	suite.ErrorIs(err, ErrProfileRequired)

	_, err = suite.service.GetTask(suite.ctx, 9999, suite.bob.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestListTasks() {
	suite.createTask(suite.alice, models.VisibilityPublic, models.DifficultyHard)
	suite.createTask(suite.alice, models.VisibilityTeamOnly, models.DifficultyTrivial)
	suite.createTask(suite.alice, models.VisibilityPrivate, models.DifficultyEasy)
	suite.createTask(suite.carol, models.VisibilityTeamOnly, models.DifficultyEasy)

	tasks, total, err := suite.service.ListTasks(suite.ctx, ListTasksInput{UserID: suite.bob.ID, Sort: "difficulty", Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(tasks, 2)
	suite.Equal(models.DifficultyTrivial, tasks[0].Difficulty)
	suite.Equal(models.DifficultyHard, tasks[1].Difficulty)

	tasks, total, err = suite.service.ListTasks(suite.ctx, ListTasksInput{UserID: suite.carol.ID, Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(tasks, 2)

	public := models.VisibilityPublic
	tasks, total, err = suite.service.ListTasks(suite.ctx, ListTasksInput{UserID: suite.alice.ID, Visibility: &public, Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(tasks, 1)

	_, _, err = suite.service.ListTasks(suite.ctx, ListTasksInput{UserID: suite.alice.ID, Sort: "-reward"})
	suite.ErrorIs(err, ErrInvalidSort)

	bad := models.TaskStatus("archived")
	_, _, err = suite.service.ListTasks(suite.ctx, ListTasksInput{UserID: suite.alice.ID, Status: &bad})
	suite.ErrorIs(err, ErrInvalidStatusFilter)

	_, _, err = suite.service.ListTasks(suite.ctx, ListTasksInput{UserID: suite.dave.ID})
	suite.ErrorIs(err, ErrProfileRequired)
}

func (suite *TaskServiceTestSuite) TestSuggestTasks() {
	suite.suggester.tasks = []GeneratedTask{
		{Name: "  buy milk ", Description: "2 liters", Difficulty: models.DifficultyTrivial},
		{Name: "   "},
		{Name: strings.Repeat("x", 80), Difficulty: "legendary"},
	}

	drafts, err := suite.service.SuggestTasks(suite.ctx, GenerateTasksInput{Text: "groceries", CreatorID: suite.alice.ID})
	suite.Require().NoError(err)
	suite.Equal("groceries", suite.suggester.text)
	suite.Require().Len(drafts, 2)
	suite.Equal("buy milk", drafts[0].Name)
	suite.Equal(models.DifficultyTrivial, drafts[0].Difficulty)
	suite.Len(drafts[1].Name, 64)
	suite.Equal(models.DifficultyOK, drafts[1].Difficulty)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count, "drafts are never stored")
}

func (suite *TaskServiceTestSuite) TestSuggestTasks_Errors() {
	_, err := suite.service.SuggestTasks(suite.ctx, GenerateTasksInput{Text: "x", CreatorID: suite.alice.ID})
	suite.ErrorIs(err, ErrAINoTasksGenerated)

	suite.suggester.tasks = []GeneratedTask{{Name: ""}}
	_, err = suite.service.SuggestTasks(suite.ctx, GenerateTasksInput{Text: "x", CreatorID: suite.alice.ID})
	suite.ErrorIs(err, ErrAINoValidTasks)

	upstream := errors.New("rate limited")
	suite.suggester.err = upstream
	_, err = suite.service.SuggestTasks(suite.ctx, GenerateTasksInput{Text: "x", CreatorID: suite.alice.ID})
	suite.ErrorIs(err, upstream)

	_, err = suite.service.SuggestTasks(suite.ctx, GenerateTasksInput{Text: "x", CreatorID: suite.dave.ID})
	suite.ErrorIs(err, ErrProfileRequired)

	unconfigured := NewTaskService(nil, nil, nil, logging.Discard())
	_, err = unconfigured.SuggestTasks(suite.ctx, GenerateTasksInput{Text: "x", CreatorID: suite.alice.ID})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
