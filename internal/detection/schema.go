package detection

// Raw shard layouts. Pointers mark fields whose absence changes behaviour.

type celebrityShard struct {
	Celebrities *[]celebrityRecord `json:"Celebrities"`
}

type celebrityRecord struct {
	Timestamp *uint64        `json:"Timestamp"`
	Celebrity *celebrityItem `json:"Celebrity"`
}

type celebrityItem struct {
	Name        string       `json:"Name"`
	Confidence  *float64     `json:"Confidence"`
	BoundingBox *BoundingBox `json:"BoundingBox"`
}

type personShard struct {
	Persons *[]personRecord `json:"Persons"`
}

type personRecord struct {
	Timestamp   *uint64     `json:"Timestamp"`
	Person      *personItem `json:"Person"`
	FaceMatches []faceMatch `json:"FaceMatches"`
}

type personItem struct {
	Index       *int64       `json:"Index"`
	Confidence  *float64     `json:"Confidence"`
	BoundingBox *BoundingBox `json:"BoundingBox"`
	Face        *faceDetail  `json:"Face"`
}

type faceMatch struct {
	Similarity *float64     `json:"Similarity"`
	Face       *matchedFace `json:"Face"`
}

type matchedFace struct {
	ExternalImageID string   `json:"ExternalImageId"`
	Confidence      *float64 `json:"Confidence"`
}

type faceShard struct {
	Faces *[]faceRecord `json:"Faces"`
}

type faceRecord struct {
	Timestamp *uint64     `json:"Timestamp"`
	Face      *faceDetail `json:"Face"`
}

type faceDetail struct {
	Confidence  *float64     `json:"Confidence"`
	BoundingBox *BoundingBox `json:"BoundingBox"`
	Emotions    []emotion    `json:"Emotions"`
}

type emotion struct {
	Type       string   `json:"Type"`
	Confidence *float64 `json:"Confidence"`
}

type labelShard struct {
	Labels *[]labelRecord `json:"Labels"`
}

type labelRecord struct {
	Timestamp *uint64    `json:"Timestamp"`
	Label     *labelItem `json:"Label"`
}

type labelItem struct {
	Name       string   `json:"Name"`
	Confidence *float64 `json:"Confidence"`
}
