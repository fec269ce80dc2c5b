package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// SendVisitReminders notifies every agent who has a visit detail whose next
// visit date falls today. Runs from the morning cron job.
func (s *Sender) SendVisitReminders(ctx context.Context) {
	today := utils.StartOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	cursor, err := db.VisitCollection.Find(ctx, bson.M{
		"visitDetails": bson.M{"$elemMatch": bson.M{
			"nextVisitDate": bson.M{"$gte": today, "$lt": tomorrow},
		}},
	})
	if err != nil {
		log.Println("SendVisitReminders find error:", err)
		return
	}
	defer cursor.Close(ctx)

	var visits []models.Visit
	if err := cursor.All(ctx, &visits); err != nil {
		log.Println("SendVisitReminders decode error:", err)
		return
	}

	for _, v := range visits {
		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"_id": v.UserID}).Decode(&user); err != nil {
			log.Printf("SendVisitReminders: user %s lookup failed: %v", v.UserID.Hex(), err)
			continue
		}

		schoolName := "a school"
		var school models.School
		if err := db.SchoolCollection.FindOne(ctx, bson.M{"_id": v.SchoolID}).Decode(&school); err == nil {
			schoolName = school.SchoolName
		}

		s.Notify(ctx, user,
			"Visit reminder",
			fmt.Sprintf("You have a visit scheduled today at %s", schoolName),
			map[string]string{
				"type":     "visit_reminder",
				"visitId":  v.ID.Hex(),
				"schoolId": v.SchoolID.Hex(),
			})
	}

	if len(visits) > 0 {
		log.Printf("Sent %d visit reminders", len(visits))
	}
}
