package model

type ResourceType string

const (
	Notes      ResourceType = "notes"
	Assignment ResourceType = "assignment"
	Textbook   ResourceType = "textbook"
	Video      ResourceType = "video"
	Document   ResourceType = "document"
	Other      ResourceType = "other"
)

// Resource represents a shared learning resource
// swagger:model Resource
type Resource struct {
	BaseModel
	Title         string       `gorm:"size:255;not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	FileURL       string       `gorm:"size:255;not null" json:"fileUrl"`
	ImageURL      string       `gorm:"size:255" json:"imageUrl"`
	Tags          string       `gorm:"size:500;default:''" json:"tags"` // 逗号分隔的标签
	Subject       string       `gorm:"size:100;not null;index" json:"subject"`
	GradeLevel    string       `gorm:"size:50;not null;index" json:"gradeLevel"`
	ResourceType  ResourceType `gorm:"size:20;not null;index" json:"resourceType"`
	UploaderID    uint         `gorm:"index;type:bigint unsigned;not null" json:"uploaderId"`
	Uploader      User         `gorm:"foreignKey:UploaderID" json:"uploader"`
	TaggedUsers   []User       `gorm:"many2many:resource_tagged_users" json:"taggedUsers"` // 描述中@提及的用户
	AverageRating float64      `gorm:"column:average_rating;default:0" json:"averageRating"`
	RatingsCount  int          `gorm:"column:ratings_count;default:0" json:"ratingsCount"`
	LikeCount     int          `gorm:"column:like_count;default:0" json:"likeCount"`
	ViewCount     int          `gorm:"column:view_count;default:0" json:"viewCount"`
	Duration      float64      `gorm:"column:duration;default:0" json:"duration"` // 视频时长（秒）
	Format        string       `gorm:"size:50" json:"format"`                     // 视频格式
	Size          int64        `gorm:"column:size;default:0" json:"size"`         // 文件大小（字节）
}

func (Resource) TableName() string {
	return "resources"
}
