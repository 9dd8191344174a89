package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kohi-academy/training-portal/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleStudent,
	domain.RoleInstructor,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var sessionTopics = []string{
	"拉花基础", "手冲冲煮", "意式萃取", "杯测入门", "烘焙曲线",
	"吧台流程", "磨豆机保养", "奶泡打发", "门店运营", "生豆品鉴",
}

var weekdayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// 用 Fisher-Yates 洗牌算法生成随机的上课周几子集
func GenerateRandomRepeatDays() []string {
	days := append([]string{}, weekdayNames...)

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(3) + 1
	return days[:n]
}

// 随机生成一个课程，锚点落在最近两周内的整点或半点
func GenerateRandomSession(ownerID int64, loc *time.Location) *domain.Session {
	now := time.Now().In(loc)
	anchor := time.Date(
		now.Year(), now.Month(), now.Day(),
		9+rand.Intn(11), 30*rand.Intn(2), 0, 0, loc,
	).AddDate(0, 0, rand.Intn(14))

	s := &domain.Session{
		OwnerID:     ownerID,
		Title:       sessionTopics[rand.Intn(len(sessionTopics))],
		Anchor:      anchor,
		MeetingLink: fmt.Sprintf("https://meet.kohi.example.com/%06d", rand.Intn(1000000)),
		Description: "课程简介" + GenerateRandomPassword(8),
	}

	if rand.Intn(2) == 1 {
		s.IsRecurring = true
		s.RepeatDays = GenerateRandomRepeatDays()
		if rand.Intn(2) == 1 {
			endDate := anchor.AddDate(0, rand.Intn(3)+1, 0)
			s.RecurringEndDate = &endDate
		}
	}

	return s
}
