package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/config"
	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/repository"
	"github.com/kohi-academy/training-portal/backend/internal/seed"
	"github.com/kohi-academy/training-portal/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机课程, 3: 随机分配学员, 4: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 课程时间按配置的时区生成
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Error("无法加载时区", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool, loc)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的课程数量")
		} else {
			// 先筛选出所有讲师
			users, err := repo.GetAllUsers()
			if err != nil {
				slog.Error("无法获取用户列表", slog.String("error", err.Error()))
				return
			}

			var instructors []*domain.User
			for _, user := range users {
				if user.Role == domain.RoleInstructor {
					instructors = append(instructors, user)
				}
			}

			if len(instructors) == 0 {
				slog.Error("数据库中没有讲师，请先插入用户")
				return
			}

			cnt := n
			now := time.Now().In(loc)
			for i := 0; i < n; i++ {
				// 随机选一名讲师
				instructor := instructors[rand.Intn(len(instructors))]

				session := utils.GenerateRandomSession(instructor.ID, loc)
				session.CreatedAt = now
				session.UpdatedAt = now
				if err := repo.CreateSession(session); err != nil {
					slog.Error("无法插入课程", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入课程成功", slog.Int("count", n-cnt))
		}
	case 3:
		// 把每名学员随机分配给一名讲师
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取用户列表", slog.String("error", err.Error()))
			return
		}

		var instructors []*domain.User
		var students []*domain.User
		for _, user := range users {
			switch user.Role {
			case domain.RoleInstructor:
				instructors = append(instructors, user)
			case domain.RoleStudent:
				students = append(students, user)
			}
		}

		if len(instructors) == 0 || len(students) == 0 {
			slog.Error("数据库中缺少讲师或学员，请先插入用户")
			return
		}

		cnt := 0
		for _, student := range students {
			instructor := instructors[rand.Intn(len(instructors))]
			if err := repo.AssignStudent(instructor.ID, student.ID); err != nil {
				slog.Error("无法分配学员", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("分配学员成功", slog.Int("count", cnt))
	case 4:
		seed.SeedDemoData(repo, cfg.Seed.User.Password, cfg.Email.UserDomain, loc)
	default:
		slog.Error("指定的操作非法")
	}
}
