package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventora/eventora-backend/models"
	"github.com/eventora/eventora-backend/storage"
)

const (
	maxCreateImages = 5
	maxUpdateImages = 10

	defaultPageSize = 10
)

// EventController handles event CRUD, comments and attendance.
type EventController struct {
	DB    *mongo.Database
	Store *storage.ImageStore
}

func NewEventController(db *mongo.Database, store *storage.ImageStore) *EventController {
	return &EventController{DB: db, Store: store}
}

// AddEventInput is the request body for creating an event.
type AddEventInput struct {
	EventName       string    `json:"eventName" binding:"required"`
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required"`
	Location        string    `json:"location" binding:"required"`
	AboutEvent      string    `json:"aboutEvent" binding:"required"`
	Images          []string  `json:"images"`
	BackgroundImage string    `json:"backgroundImage"`
	Status          *int      `json:"status"`
}

// UpdateEventInput allows partial updates; empty fields are left unchanged.
type UpdateEventInput struct {
	EventID         string     `json:"eventId" binding:"required"`
	EventName       string     `json:"eventName"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	Location        string     `json:"location"`
	AboutEvent      string     `json:"aboutEvent"`
	Images          []string   `json:"images"`
	BackgroundImage string     `json:"backgroundImage"`
	Status          *int       `json:"status"`
}

// DeleteEventInput carries the id of the event to remove.
type DeleteEventInput struct {
	EventID string `json:"eventId" binding:"required"`
}

// AddCommentInput is the request body for commenting on an event.
type AddCommentInput struct {
	Comment string `json:"comment"`
}

// AddEvent creates an event and back-fills the creator's created and
// attending lists. The event is written first; a missing creator afterwards
// leaves the event orphaned, which is logged.
func (e *EventController) AddEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var input AddEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if len(input.Images) > maxCreateImages {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You can only upload up to 5 images"})
		return
	}

	status := models.StatusUpcoming
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event status"})
			return
		}
		status = *input.Status
	}

	event := models.Event{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		EventName:       input.EventName,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Location:        input.Location,
		AboutEvent:      input.AboutEvent,
		Images:          input.Images,
		BackgroundImage: input.BackgroundImage,
		Status:          status,
		Comments:        []models.Comment{},
		AttendUsers:     []primitive.ObjectID{},
	}
	if event.Images == nil {
		event.Images = []string{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := e.DB.Collection("events").InsertOne(ctx, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	update := bson.M{"$addToSet": bson.M{
		"eventsCreated":   event.ID,
		"eventsAttending": event.ID,
	}}
	res, err := e.DB.Collection("users").UpdateByID(ctx, userID, update)
	if err != nil {
		log.Error().Err(err).Str("event", event.ID.Hex()).Msg("failed to link event to creator")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if res.MatchedCount == 0 {
		log.Warn().Str("event", event.ID.Hex()).Str("user", userID.Hex()).Msg("creator vanished, event left orphaned")
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Event added successfully"})
}

// GetEvents lists the caller's own events with offset pagination and an
// optional status filter. Returns the page plus a total count.
func (e *EventController) GetEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}

	filter := bson.M{"userId": userID}
	if s := c.Query("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil || !models.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event status"})
			return
		}
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events := e.DB.Collection("events")

	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := events.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	results := []models.Event{}
	if err := cursor.All(ctx, &results); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	total, err := events.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": results, "totalEvents": total})
}

// UpdateEvent applies a partial update; only the creator may edit. Dropped
// images and a replaced background image are deleted from disk best-effort.
func (e *EventController) UpdateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var input UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(input.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	if len(input.Images) > maxUpdateImages {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You can only upload up to 10 images"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	if err := e.DB.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}

	if event.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit which event you have created"})
		return
	}

	set := bson.M{}
	if input.EventName != "" {
		set["eventName"] = input.EventName
	}
	if input.StartDate != nil && !input.StartDate.IsZero() {
		set["startDate"] = *input.StartDate
	}
	if input.EndDate != nil && !input.EndDate.IsZero() {
		set["endDate"] = *input.EndDate
	}
	if input.Location != "" {
		set["location"] = input.Location
	}
	if input.AboutEvent != "" {
		set["aboutEvent"] = input.AboutEvent
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event status"})
			return
		}
		set["status"] = *input.Status
	}

	if input.Images != nil {
		set["images"] = e.Store.Reconcile(event.Images, input.Images)
	}

	if input.BackgroundImage != "" {
		if event.BackgroundImage != "" && event.BackgroundImage != input.BackgroundImage {
			e.Store.Remove(event.BackgroundImage)
		}
		set["backgroundImage"] = input.BackgroundImage
	}

	if len(set) > 0 {
		if _, err := e.DB.Collection("events").UpdateByID(ctx, eventID, bson.M{"$set": set}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully"})
}

// DeleteEvent removes an event and strips its id from every user's event
// lists, attendees included.
func (e *EventController) DeleteEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var input DeleteEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(input.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	if err := e.DB.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}

	if event.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not authorized to delete this event"})
		return
	}

	if _, err := e.DB.Collection("events").DeleteOne(ctx, bson.M{"_id": eventID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// fan out: attendees other than the creator also hold references
	holders := bson.M{"$or": []bson.M{
		{"eventsCreated": eventID},
		{"eventsAttending": eventID},
		{"eventsAttended": eventID},
	}}
	pull := bson.M{"$pull": bson.M{
		"eventsCreated":   eventID,
		"eventsAttending": eventID,
		"eventsAttended":  eventID,
	}}
	if _, err := e.DB.Collection("users").UpdateMany(ctx, holders, pull); err != nil {
		log.Error().Err(err).Str("event", eventID.Hex()).Msg("failed to strip event references")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// GetEventByID returns an event with comment authors resolved to their
// display name and avatar.
func (e *EventController) GetEventByID(c *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	if err := e.DB.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}

	authors, err := e.commentAuthors(ctx, event.Comments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	comments := make([]gin.H, 0, len(event.Comments))
	for _, cm := range event.Comments {
		author := gin.H{"_id": cm.UserID}
		if u, ok := authors[cm.UserID]; ok {
			author["fullName"] = u.FullName
			author["profileImage"] = u.ProfileImage
		}
		comments = append(comments, gin.H{
			"userId":    author,
			"comment":   cm.Comment,
			"createdAt": cm.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"_id":             event.ID,
		"userId":          event.UserID,
		"eventName":       event.EventName,
		"startDate":       event.StartDate,
		"endDate":         event.EndDate,
		"location":        event.Location,
		"aboutEvent":      event.AboutEvent,
		"images":          event.Images,
		"backgroundImage": event.BackgroundImage,
		"status":          event.Status,
		"comments":        comments,
		"attendUsers":     event.AttendUsers,
	})
}

// commentAuthors loads the users referenced by a comment list.
func (e *EventController) commentAuthors(ctx context.Context, comments []models.Comment) (map[primitive.ObjectID]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(comments))
	seen := make(map[primitive.ObjectID]bool, len(comments))
	for _, cm := range comments {
		if !seen[cm.UserID] {
			seen[cm.UserID] = true
			ids = append(ids, cm.UserID)
		}
	}

	authors := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	cursor, err := e.DB.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		authors[u.ID] = u
	}
	return authors, nil
}

// findEvents runs a filtered read; limit 0 means unbounded. Empty result
// sets are a normal outcome and come back as an empty slice.
func (e *EventController) findEvents(ctx context.Context, filter bson.M, limit int64) ([]models.Event, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := e.DB.Collection("events").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (e *EventController) respondEvents(c *gin.Context, filter bson.M, limit int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := e.findEvents(ctx, filter, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEventsByLocation returns every event at a location.
func (e *EventController) GetEventsByLocation(c *gin.Context) {
	e.respondEvents(c, bson.M{"location": c.Param("location")}, 0)
}

// Get3EventsByStatus returns up to three events with the given status.
func (e *EventController) Get3EventsByStatus(c *gin.Context) {
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil || !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event status"})
		return
	}
	e.respondEvents(c, bson.M{"status": status}, 3)
}

// Get3UpcomingEventsByLocation returns up to three upcoming events at a
// location.
func (e *EventController) Get3UpcomingEventsByLocation(c *gin.Context) {
	e.respondEvents(c, bson.M{"location": c.Param("location"), "status": models.StatusUpcoming}, 3)
}

// GetAllUpcomingEventsByLocation returns every upcoming event at a location.
func (e *EventController) GetAllUpcomingEventsByLocation(c *gin.Context) {
	e.respondEvents(c, bson.M{"location": c.Param("location"), "status": models.StatusUpcoming}, 0)
}

// GetAllEvents returns every event with the given status.
func (e *EventController) GetAllEvents(c *gin.Context) {
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil || !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event status"})
		return
	}
	e.respondEvents(c, bson.M{"status": status}, 0)
}

// AddComment appends a timestamped comment to an event.
func (e *EventController) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	var input AddCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if strings.TrimSpace(input.Comment) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment cannot be empty"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	if err := e.DB.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}

	comment := models.Comment{
		UserID:    userID,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := e.DB.Collection("events").UpdateByID(ctx, eventID, bson.M{"$push": bson.M{"comments": comment}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	event.Comments = append(event.Comments, comment)
	c.JSON(http.StatusOK, gin.H{"message": "Comment added successfully", "event": event})
}

// Attend adds the caller to an event's attendee set and mirrors the event
// into the caller's attending list.
func (e *EventController) Attend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	if err := e.DB.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}

	if containsID(event.AttendUsers, userID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User is already attending this event"})
		return
	}

	var user models.User
	if err := e.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if _, err := e.DB.Collection("events").UpdateByID(ctx, eventID, bson.M{"$addToSet": bson.M{"attendUsers": userID}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if _, err := e.DB.Collection("users").UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"eventsAttending": eventID}}); err != nil {
		log.Error().Err(err).Str("event", eventID.Hex()).Str("user", userID.Hex()).Msg("attend bookkeeping failed, lists out of sync")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	event.AttendUsers = append(event.AttendUsers, userID)
	c.JSON(http.StatusOK, gin.H{"message": "User added to event", "event": event})
}

// Unattend removes the caller from an event's attendee set and from their
// own attending list.
func (e *EventController) Unattend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	if err := e.DB.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}

	if !containsID(event.AttendUsers, userID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User is not attending this event"})
		return
	}

	var user models.User
	if err := e.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if _, err := e.DB.Collection("events").UpdateByID(ctx, eventID, bson.M{"$pull": bson.M{"attendUsers": userID}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if _, err := e.DB.Collection("users").UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"eventsAttending": eventID}}); err != nil {
		log.Error().Err(err).Str("event", eventID.Hex()).Str("user", userID.Hex()).Msg("unattend bookkeeping failed, lists out of sync")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	event.AttendUsers = removeID(event.AttendUsers, userID)
	c.JSON(http.StatusOK, gin.H{"message": "User removed from event", "event": event})
}
