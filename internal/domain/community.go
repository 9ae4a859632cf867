package domain

import "time"

// ─── Users ──────────────────────────────────────────────────────────────────

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	MobileNo     string    `json:"mobileNo"`
	PasswordHash string    `json:"-"`
	Points       int       `json:"points"`
	Avatar       string    `json:"avatar,omitempty"`
	Badges       []string  `json:"badges"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Author is the public subset of a user embedded in posts and comments.
type Author struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Points   int    `json:"points"`
	Avatar   string `json:"avatar,omitempty"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Avatar string `json:"avatar"`
}

// ─── Journeys ───────────────────────────────────────────────────────────────

// TransportType is the mode of a logged journey.
type TransportType string

const (
	TransportBicycle  TransportType = "bicycle"
	TransportTrain    TransportType = "train"
	TransportBus      TransportType = "bus"
	TransportElectric TransportType = "electric"
	TransportCar      TransportType = "car"
)

// Journey is a logged trip with its estimated emissions in kg CO2.
type Journey struct {
	ID             string        `json:"_id"`
	UserID         string        `json:"userId"`
	TransportType  TransportType `json:"transportType"`
	Distance       float64       `json:"distance"`
	FuelEfficiency *float64      `json:"fuelEfficiency,omitempty"`
	Emissions      float64       `json:"emissions"`
	Date           time.Time     `json:"date"`
}

// JourneyStats aggregates a user's journeys.
type JourneyStats struct {
	TotalEmissions float64 `json:"totalEmissions"`
	TotalSaved     float64 `json:"totalSaved"`
}

// ─── Social Feed ────────────────────────────────────────────────────────────

// Reaction is one user's reaction on a comment.
type Reaction struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// Comment is a reply on a post.
type Comment struct {
	ID        string     `json:"_id"`
	PostID    string     `json:"postId"`
	User      Author     `json:"userId"`
	Text      string     `json:"text"`
	Reactions []Reaction `json:"reactions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Post is a social feed entry.
type Post struct {
	ID        string    `json:"_id"`
	User      Author    `json:"userId"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// ─── Community Events ───────────────────────────────────────────────────────

// Event is a volunteering event users can join.
type Event struct {
	ID                 string    `json:"_id"`
	Name               string    `json:"name"`
	Date               time.Time `json:"date"`
	Time               string    `json:"time"`
	Location           string    `json:"location"`
	RequiredVolunteers int       `json:"requiredVolunteers"`
	Creator            Author    `json:"creator"`
	Volunteers         []Author  `json:"volunteers"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ─── Notifications ──────────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyVolunteerJoined NotificationType = "VOLUNTEER_JOINED"
	NotifySystem          NotificationType = "SYSTEM"
	NotifyBadgeEarned     NotificationType = "BADGE_EARNED"
)

// Notification is a user-facing message.
type Notification struct {
	ID        string           `json:"_id"`
	Recipient string           `json:"recipient"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
