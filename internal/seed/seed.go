package seed

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/repository"
	"github.com/kohi-academy/training-portal/backend/internal/utils"
)

type demoUser struct {
	FullName string
	Username string
	Role     domain.Role
}

// 固定的演示名单，讲师在前，学员在后
var demoUsers = []demoUser{
	{FullName: "沈墨白", Username: "shenmobai", Role: domain.RoleInstructor},
	{FullName: "顾清源", Username: "guqingyuan", Role: domain.RoleInstructor},
	{FullName: "林晓棠", Username: "linxiaotang", Role: domain.RoleStudent},
	{FullName: "周子昂", Username: "zhouziang", Role: domain.RoleStudent},
	{FullName: "吴佩珊", Username: "wupeishan", Role: domain.RoleStudent},
	{FullName: "郑亦凡", Username: "zhengyifan", Role: domain.RoleStudent},
}

// SeedDemoData 插入一套固定的演示数据：两名讲师、四名学员、学员平均分配给讲师，
// 每名讲师再各发布一门一次性课程和一门每周重复课程。
func SeedDemoData(r *repository.Repository, password string, emailDomain string, loc *time.Location) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("无法生成密码哈希", "error", err)
		return
	}

	var instructors []*domain.User
	var students []*domain.User

	for _, du := range demoUsers {
		user := &domain.User{
			Username:     du.Username,
			PasswordHash: string(passwordHash),
			FullName:     du.FullName,
			Email:        fmt.Sprintf("%s@%s", du.Username, emailDomain),
			Role:         du.Role,
		}

		if err := r.CreateUser(user); err != nil {
			slog.Error("无法插入演示用户", "username", du.Username, "error", err)
			continue
		}

		if du.Role == domain.RoleInstructor {
			instructors = append(instructors, user)
		} else {
			students = append(students, user)
		}
	}

	if len(instructors) == 0 {
		slog.Error("没有成功插入任何讲师，跳过后续演示数据")
		return
	}

	// 学员轮流分配给讲师
	for i, student := range students {
		instructor := instructors[i%len(instructors)]
		if err := r.AssignStudent(instructor.ID, student.ID); err != nil {
			slog.Error("无法分配学员", "instructor", instructor.Username, "student", student.Username, "error", err)
		}
	}

	// 每名讲师发布两门课程
	for _, instructor := range instructors {
		oneOff := utils.GenerateRandomSession(instructor.ID, loc)
		oneOff.IsRecurring = false
		oneOff.RepeatDays = nil
		oneOff.RecurringEndDate = nil

		weekly := utils.GenerateRandomSession(instructor.ID, loc)
		weekly.IsRecurring = true
		if len(weekly.RepeatDays) == 0 {
			weekly.RepeatDays = utils.GenerateRandomRepeatDays()
		}

		now := time.Now().In(loc)
		for _, s := range []*domain.Session{oneOff, weekly} {
			s.CreatedAt = now
			s.UpdatedAt = now
			if err := r.CreateSession(s); err != nil {
				slog.Error("无法插入演示课程", "instructor", instructor.Username, "title", s.Title, "error", err)
			}
		}
	}

	slog.Info("演示数据插入完成", "instructors", len(instructors), "students", len(students))
}
