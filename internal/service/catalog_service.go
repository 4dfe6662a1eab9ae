package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dreampath_backend/internal/model"
	"dreampath_backend/internal/util"
	"dreampath_backend/pkg/logger"

	"go.uber.org/zap"
)

// CatalogService 启动时加载一次职业/项目/测验静态目录，之后只读。
// 职业切片顺序即目录顺序，测验排名按它打破平分。
type CatalogService struct {
	careers  []model.Career
	programs []model.Program
	quizzes  []model.Quiz
}

// NewCatalogService 从数据目录读取 careers.json、programs.json、quizzes.json。
// careers 和 quizzes 必须存在，programs 可缺失。
func NewCatalogService(dataDir string) (*CatalogService, error) {
	s := &CatalogService{}

	if err := loadJSON(filepath.Join(dataDir, "careers.json"), &s.careers); err != nil {
		return nil, fmt.Errorf("load careers catalog: %w", err)
	}
	if err := loadJSON(filepath.Join(dataDir, "quizzes.json"), &s.quizzes); err != nil {
		return nil, fmt.Errorf("load quizzes catalog: %w", err)
	}
	if err := loadJSON(filepath.Join(dataDir, "programs.json"), &s.programs); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load programs catalog: %w", err)
		}
		logger.Log.Warn("programs catalog missing, continuing without programs",
			zap.String("dataDir", dataDir))
	}

	logger.Log.Info("catalog loaded",
		zap.Int("careers", len(s.careers)),
		zap.Int("programs", len(s.programs)),
		zap.Int("quizzes", len(s.quizzes)))
	return s, nil
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Careers 目录顺序的职业列表
func (s *CatalogService) Careers() []model.Career {
	return s.careers
}

func (s *CatalogService) Career(careerID string) (*model.Career, error) {
	for i := range s.careers {
		if s.careers[i].ID == careerID {
			return &s.careers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", util.ErrCareerNotFound, careerID)
}

// SearchCareers 标题/简介/类别的大小写不敏感搜索；空查询返回全部
func (s *CatalogService) SearchCareers(query string) []model.Career {
	if query == "" {
		return s.careers
	}
	query = strings.ToLower(query)
	var matched []model.Career
	for _, career := range s.careers {
		if strings.Contains(strings.ToLower(career.Title), query) ||
			strings.Contains(strings.ToLower(career.Summary), query) {
			matched = append(matched, career)
			continue
		}
		for _, category := range career.Categories {
			if strings.Contains(strings.ToLower(category), query) {
				matched = append(matched, career)
				break
			}
		}
	}
	return matched
}

func (s *CatalogService) Programs() []model.Program {
	return s.programs
}

// ProgramsForCareer 与职业相关的培养项目
func (s *CatalogService) ProgramsForCareer(careerID string) []model.Program {
	var matched []model.Program
	for _, program := range s.programs {
		for _, id := range program.CareerIDs {
			if id == careerID {
				matched = append(matched, program)
				break
			}
		}
	}
	return matched
}

func (s *CatalogService) Quizzes() []model.Quiz {
	return s.quizzes
}

func (s *CatalogService) Quiz(quizID string) (*model.Quiz, error) {
	for i := range s.quizzes {
		if s.quizzes[i].ID == quizID {
			return &s.quizzes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", util.ErrQuizNotFound, quizID)
}

// MainQuiz 主测验（目录中的第一个），没有则返回 nil
func (s *CatalogService) MainQuiz() *model.Quiz {
	if len(s.quizzes) == 0 {
		return nil
	}
	return &s.quizzes[0]
}
