package models

type SourceFile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Path      string     `gorm:"size:255;uniqueIndex;not null" json:"path"`
	Questions []Question `gorm:"foreignKey:SourceFileID" json:"questions,omitempty"`
}
