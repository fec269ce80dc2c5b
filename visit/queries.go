package visit

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/school"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetMyVisits lists the calling agent's visits.
func GetMyVisits(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}
	respondVisits(w, r, bson.M{"userId": db.IDFilter(userID)})
}

func GetVisitsByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	respondVisits(w, r, bson.M{"userId": db.IDFilter(ps.ByName("id"))})
}

func GetVisitsBySchool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	respondVisits(w, r, bson.M{"schoolId": db.IDFilter(ps.ByName("id"))})
}

// GetVisitByUserAndSchool returns the visit history for one agent at one
// school.
func GetVisitByUserAndSchool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	respondVisits(w, r, bson.M{
		"userId":   db.IDFilter(ps.ByName("userId")),
		"schoolId": db.IDFilter(ps.ByName("schoolId")),
	})
}

func respondVisits(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	visits, err := findVisits(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	views, err := populateVisits(ctx, visits)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Visits fetched successfully", views, utils.M{"count": len(views)})
}

// GetMyMonthlyVisits returns the calling agent's visits whose schedule date
// falls in the requested month.
func GetMyMonthlyVisits(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	now := time.Now()
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	visits, err := findVisits(ctx, bson.M{
		"userId":       db.IDFilter(userID),
		"scheduleDate": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		utils.Internal(w, err)
		return
	}

	views, err := populateVisits(ctx, visits)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Monthly visits fetched successfully", views, utils.M{
		"count": len(views),
		"year":  year,
		"month": month,
	})
}

type zoneSchoolView struct {
	School        models.School `json:"school"`
	CurrentStatus string        `json:"currentStatus"`
	VisitCount    int           `json:"visitCount"`
	LastVisitedAt time.Time     `json:"lastVisitedAt,omitempty"`
}

// GetVisitsByZone reports every school in the caller's assigned zone with
// its current visit status. Schools never visited default to pending, so
// the agent sees the full territory, not only where they have been.
func GetVisitsByZone(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	zone := r.URL.Query().Get("zone")
	if zone == "" {
		zone = utils.GetZoneFromRequest(r)
	}
	if zone == "" {
		utils.Fail(w, "Zone is required")
		return
	}
	zone = utils.NormalizeZone(zone)

	schools, err := school.FindByZone(ctx, zone)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	ids := bson.A{}
	for _, s := range schools {
		ids = append(ids, s.ID, s.ID.Hex())
	}

	// latest visit per school decides the school's current status
	latest := map[primitive.ObjectID]models.Visit{}
	if len(ids) > 0 {
		vcursor, err := db.VisitCollection.Find(ctx,
			bson.M{"schoolId": bson.M{"$in": ids}},
			options.Find().SetSort(bson.M{"updatedAt": 1}))
		if err != nil {
			utils.Internal(w, err)
			return
		}
		var visits []models.Visit
		if err := vcursor.All(ctx, &visits); err != nil {
			utils.Internal(w, err)
			return
		}
		for _, v := range visits {
			latest[v.SchoolID] = v
		}
	}

	statusFilter := r.URL.Query().Get("status")
	nameFilter := strings.ToLower(r.URL.Query().Get("search"))
	views := []zoneSchoolView{}
	for _, s := range schools {
		if nameFilter != "" && !strings.Contains(strings.ToLower(s.SchoolName), nameFilter) {
			continue
		}
		view := zoneSchoolView{School: s, CurrentStatus: models.VisitPending}
		if v, ok := latest[s.ID]; ok {
			view.CurrentStatus = v.Status
			view.VisitCount = len(v.VisitDetails)
			view.LastVisitedAt = v.UpdatedAt
		}
		if statusFilter != "" && view.CurrentStatus != statusFilter {
			continue
		}
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].School.SchoolName < views[j].School.SchoolName
	})

	utils.SuccessExtra(w, "Zone visits fetched successfully", views, utils.M{
		"zone":  zone,
		"count": len(views),
	})
}
