package models

import (
	"encoding/json"
	"time"
)

// Roadmap 学习路线图主表
// 生成后不可变，query_text记录生成该路线图的原始查询
// embedding以JSON文本存储查询向量，手工创建的路线图可以没有向量
type Roadmap struct {
	RoadmapID   uint      `gorm:"primaryKey;column:roadmap_id" json:"roadmap_id"`
	Name        string    `gorm:"size:200;not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	QueryText   string    `gorm:"type:text;column:query_text" json:"query_text"`
	Embedding   string    `gorm:"type:text" json:"-"`
	CreateTime  time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`

	Steps []RoadmapStep `gorm:"foreignKey:RoadmapID" json:"steps,omitempty"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

// SetEmbedding 序列化并保存查询向量
func (r *Roadmap) SetEmbedding(vec []float32) error {
	if len(vec) == 0 {
		r.Embedding = ""
		return nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	r.Embedding = string(data)
	return nil
}

// EmbeddingVector 反序列化存储的查询向量，无向量或数据损坏时返回nil
func (r *Roadmap) EmbeddingVector() []float32 {
	if r.Embedding == "" {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(r.Embedding), &vec); err != nil {
		return nil
	}
	return vec
}

// RoadmapStep 路线图步骤表
// 步骤ID形如"1-1"，与roadmap_id组成联合主键
type RoadmapStep struct {
	RoadmapID      uint   `gorm:"primaryKey;column:roadmap_id" json:"roadmap_id"`
	StepID         string `gorm:"primaryKey;column:step_id;size:20" json:"step_id"`
	Title          string `gorm:"size:200;not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	Icon           string `gorm:"size:50" json:"icon"`
	IconColor      string `gorm:"size:50;column:icon_color" json:"icon_color"`
	IconBg         string `gorm:"size:50;column:icon_bg" json:"icon_bg"`
	TimeToComplete string `gorm:"size:50;column:time_to_complete" json:"time_to_complete"`
	Difficulty     int    `gorm:"default:1" json:"difficulty"` // 1=入门 2=进阶 3=高级
	Tips           string `gorm:"type:text" json:"tips"`

	Resources []Resource `gorm:"foreignKey:RoadmapID,StepID;references:RoadmapID,StepID" json:"resources,omitempty"`
}

func (RoadmapStep) TableName() string {
	return "roadmap_steps"
}

// Resource 步骤学习资源表
type Resource struct {
	ResourceID  uint   `gorm:"primaryKey;column:resource_id" json:"resource_id"`
	RoadmapID   uint   `gorm:"column:roadmap_id;not null;index" json:"roadmap_id"`
	StepID      string `gorm:"column:step_id;size:20;not null" json:"step_id"`
	Title       string `gorm:"size:200" json:"title"`
	URL         string `gorm:"size:500" json:"url"`
	Source      string `gorm:"size:100" json:"source"`
	Description string `gorm:"type:text" json:"description"`
}

func (Resource) TableName() string {
	return "resources"
}

// UserFavoriteRoadmap 用户收藏表
type UserFavoriteRoadmap struct {
	UserID     uint      `gorm:"primaryKey;column:user_id" json:"user_id"`
	RoadmapID  uint      `gorm:"primaryKey;column:roadmap_id" json:"roadmap_id"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

func (UserFavoriteRoadmap) TableName() string {
	return "user_favorite_roadmaps"
}

// UserStepProgress 用户步骤进度表
type UserStepProgress struct {
	UserID      uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	RoadmapID   uint       `gorm:"primaryKey;column:roadmap_id" json:"roadmap_id"`
	StepID      string     `gorm:"primaryKey;column:step_id;size:20" json:"step_id"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
}

func (UserStepProgress) TableName() string {
	return "user_step_progress"
}
