// Package seed fills a database with demo accounts, readings and community
// content.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DemoPassword = "password123"

type Options struct {
	// Reset deletes every existing row first.
	Reset bool
	// Hours of hourly readings generated per city.
	Hours int
	Now   time.Time
	// Rand drives the synthetic readings. Defaults to a fixed seed.
	Rand *rand.Rand
}

type Summary struct {
	Users          int64
	Readings       int64
	Alerts         int64
	Groups         int64
	Posts          int64
	Pledges        int64
	SupplyChain    int64
	ShipmentEvents int64
}

type city struct {
	name, state string
	lat, lon    float64
}

var cities = []city{
	{"New Delhi", "Delhi", 28.6139, 77.2090},
	{"Mumbai", "Maharashtra", 19.0760, 72.8777},
	{"Bangalore", "Karnataka", 12.9716, 77.5946},
}

type seeder struct {
	tx   *gorm.DB
	now  time.Time
	rand *rand.Rand
}

// Run seeds the database in a single transaction.
func Run(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	if opts.Hours <= 0 {
		opts.Hours = 24
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(2024, 6))
	}

	l := logging.WithComponent("seed")

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := &seeder{tx: tx, now: opts.Now, rand: opts.Rand}

		if opts.Reset {
			l.Info().Msg("Clearing existing data")
			if err := s.reset(); err != nil {
				return err
			}
		}

		users, err := s.users()
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		admin, john, jane := users[0], users[1], users[2]

		steps := []struct {
			name string
			run  func() error
		}{
			{"readings", func() error { return s.readings(opts.Hours) }},
			{"alerts", s.alerts},
			{"community", func() error { return s.community(admin, john, jane) }},
			{"pledges", func() error { return s.pledges(admin, john, jane) }},
			{"supply chain", func() error { return s.supplyChain(john, jane) }},
		}
		for _, step := range steps {
			l.Info().Str("step", step.name).Msg("Seeding")
			if err := step.run(); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	return summarize(db.WithContext(ctx))
}

func (s *seeder) reset() error {
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := s.tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	return nil
}

func (s *seeder) users() ([]*models.User, error) {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}

	users := []*models.User{
		{
			Email: "admin@climatrix.com", Username: "admin", FirstName: "Admin", LastName: "User",
			Role: types.RoleAdmin, City: "New Delhi", State: "Delhi", Latitude: 28.6139, Longitude: 77.2090,
			Profile: &models.Profile{
				Bio:       "Climate data administrator and analyst",
				Interests: datatypes.JSONSlice[string]{"climate-science", "data-analysis", "sustainability"},
			},
		},
		{
			Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe",
			Role: types.RoleUser, City: "Mumbai", State: "Maharashtra", Latitude: 19.0760, Longitude: 72.8777,
			Profile: &models.Profile{
				Bio:       "Environmental activist and community organizer",
				Website:   "https://johndoe.com",
				Interests: datatypes.JSONSlice[string]{"air-quality", "renewable-energy", "urban-forestry"},
			},
		},
		{
			Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith",
			Role: types.RoleAnalyst, City: "Bangalore", State: "Karnataka", Latitude: 12.9716, Longitude: 77.5946,
			Profile: &models.Profile{
				Bio:       "Climate scientist and researcher",
				Interests: datatypes.JSONSlice[string]{"climate-change", "data-science", "research"},
			},
		},
	}

	for _, u := range users {
		u.PasswordHash = hash
		u.IsVerified = true
		u.Country = "India"
		if err := s.tx.Create(u).Error; err != nil {
			return nil, fmt.Errorf("create %s: %w", u.Username, err)
		}
	}
	return users, nil
}

// between returns a value uniformly drawn from [lo, lo+span).
func (s *seeder) between(lo, span float64) *float64 {
	v := lo + s.rand.Float64()*span
	return &v
}

func (s *seeder) readings(hours int) error {
	readings := make([]models.ClimateReading, 0, len(cities)*hours)
	for _, c := range cities {
		for i := 0; i < hours; i++ {
			cloud := s.rand.IntN(100)
			readings = append(readings, models.ClimateReading{
				Location:      c.name + ", " + c.state,
				City:          c.name,
				State:         c.state,
				Country:       "India",
				Latitude:      c.lat,
				Longitude:     c.lon,
				Temperature:   *s.between(25, 10),
				FeelsLike:     s.between(26, 10),
				TempMin:       s.between(20, 5),
				TempMax:       s.between(30, 5),
				AQI:           50 + s.rand.IntN(150),
				PM25:          s.between(25, 75),
				PM10:          s.between(50, 100),
				CO:            s.between(0.5, 2),
				NO2:           s.between(20, 40),
				SO2:           s.between(10, 30),
				O3:            s.between(40, 80),
				Humidity:      s.between(50, 40),
				Pressure:      s.between(1010, 20),
				Visibility:    s.between(5000, 5000),
				WindSpeed:     s.between(2, 8),
				WindDirection: s.between(0, 360),
				Rainfall:      s.between(0, 10),
				CloudCover:    &cloud,
				UVIndex:       s.between(2, 8),
				Source:        "OpenWeatherMap",
				ReadingTime:   s.now.Add(-time.Duration(i) * time.Hour),
			})
		}
	}
	return s.tx.CreateInBatches(readings, 100).Error
}

func (s *seeder) alerts() error {
	f := func(v float64) *float64 { return &v }

	alerts := []models.EnvironmentalAlert{
		{
			Type:         "AIR_QUALITY",
			Severity:     "HIGH",
			Title:        "Poor Air Quality Alert",
			Description:  "Air quality has deteriorated to unhealthy levels. Limit outdoor activities.",
			Location:     "New Delhi, Delhi",
			City:         "New Delhi",
			Latitude:     f(28.6139),
			Longitude:    f(77.2090),
			Radius:       f(50),
			CurrentValue: f(180),
			IsActive:     true,
			StartTime:    s.now,
		},
		{
			Type:         "HEAT_WAVE",
			Severity:     "MODERATE",
			Title:        "Heat Wave Warning",
			Description:  "Temperatures expected to reach 42°C. Stay hydrated and avoid sun exposure.",
			Location:     "Mumbai, Maharashtra",
			City:         "Mumbai",
			Latitude:     f(19.0760),
			Longitude:    f(72.8777),
			Radius:       f(30),
			CurrentValue: f(42),
			IsActive:     true,
			StartTime:    s.now,
		},
	}
	return s.tx.Create(&alerts).Error
}

func (s *seeder) community(admin, john, jane *models.User) error {
	delhi := &models.Group{
		Name: "Delhi Green Warriors", Slug: "delhi-green-warriors",
		Description: "Focused on local air quality and urban forestry in Delhi.",
		City:        "New Delhi", State: "Delhi", Country: "India", Category: "air-quality",
		IsPublic: true, CreatedByID: john.ID,
	}
	mumbai := &models.Group{
		Name: "Mumbai Sustainability Network", Slug: "mumbai-sustainability-network",
		Description: "Waste management and solar energy initiatives in Mumbai.",
		City:        "Mumbai", State: "Maharashtra", Country: "India", Category: "waste-management",
		IsPublic: true, CreatedByID: john.ID,
	}
	for _, g := range []*models.Group{delhi, mumbai} {
		if err := s.tx.Omit("CreatedBy", "Members").Create(g).Error; err != nil {
			return err
		}
	}

	members := []models.GroupMember{
		{GroupID: delhi.ID, UserID: john.ID, Role: models.GroupRoleAdmin},
		{GroupID: delhi.ID, UserID: jane.ID, Role: models.GroupRoleMember},
		{GroupID: mumbai.ID, UserID: john.ID, Role: models.GroupRoleAdmin},
		{GroupID: mumbai.ID, UserID: admin.ID, Role: models.GroupRoleModerator},
	}
	if err := s.tx.Create(&members).Error; err != nil {
		return err
	}

	drive := &models.Post{
		GroupID:  &delhi.ID,
		AuthorID: john.ID,
		Title:    "Community Tree Planting Drive This Weekend!",
		Content:  "Join us for a tree planting event at Central Park. We aim to plant 500 trees this season. Bring your friends and family!",
		Tags:     datatypes.JSONSlice[string]{"tree-planting", "community", "event"},
		Images:   datatypes.JSONSlice[string]{},
		IsPinned: true,
	}
	workshop := &models.Post{
		GroupID:  &mumbai.ID,
		AuthorID: jane.ID,
		Title:    "Solar Panel Installation Workshop",
		Content:  "Learn how to install and maintain solar panels for your home. Free workshop next Saturday.",
		Tags:     datatypes.JSONSlice[string]{"solar-energy", "workshop", "renewable-energy"},
		Images:   datatypes.JSONSlice[string]{},
	}
	for _, p := range []*models.Post{drive, workshop} {
		if err := s.tx.Omit("Author", "Group").Create(p).Error; err != nil {
			return err
		}
	}

	comments := []models.Comment{
		{PostID: drive.ID, AuthorID: jane.ID, Content: "Great initiative! Count me in."},
		{PostID: drive.ID, AuthorID: admin.ID, Content: "We can provide tools and saplings. Let me know what you need."},
	}
	return s.tx.Omit("Post", "Author").Create(&comments).Error
}

func (s *seeder) pledges(admin, john, jane *models.User) error {
	verifiedAt := s.now
	pledges := []models.EnvironmentalPledge{
		{
			UserID: john.ID, PledgeType: "PLANT_TREES", Quantity: 50, Unit: "trees",
			Description: "Plant 50 trees in my locality this year",
			Status:      models.PledgeActive, StartDate: s.now,
		},
		{
			UserID: jane.ID, PledgeType: "REDUCE_DRIVING", Quantity: 100, Unit: "km",
			Description: "Use public transport and reduce car usage by 100km per week",
			Status:      models.PledgeActive, StartDate: s.now,
		},
		{
			UserID: admin.ID, PledgeType: "SAVE_ENERGY", Quantity: 500, Unit: "kWh",
			Description: "Reduce home energy consumption by 500 kWh this month",
			Status:      models.PledgeCompleted, StartDate: s.now.AddDate(0, 0, -30),
			VerifiedAt: &verifiedAt,
		},
	}
	return s.tx.Omit("User").Create(&pledges).Error
}

func (s *seeder) supplyChain(john, jane *models.User) error {
	f := func(v float64) *float64 { return &v }
	eta := s.now.AddDate(0, 0, 2)
	arrived := s.now

	cotton := &models.SupplyChainItem{
		UserID: john.ID, ProductName: "Organic Cotton T-Shirts", ProductCode: "PROD-001", Category: "Textiles",
		Origin: "Bangalore, Karnataka", CurrentLocation: "Mumbai, Maharashtra", Destination: "New Delhi, Delhi",
		Status:          models.ShipmentInTransit,
		CarbonFootprint: f(45.5), EnergyUsed: f(120), WaterUsed: f(2500), WasteGenerated: f(5.2),
		Temperature: f(25.5), Humidity: f(65), EstimatedArrival: &eta,
	}
	panels := &models.SupplyChainItem{
		UserID: jane.ID, ProductName: "Solar Panels (200W)", ProductCode: "PROD-002", Category: "Renewable Energy Equipment",
		Origin: "Pune, Maharashtra", CurrentLocation: "Bangalore, Karnataka", Destination: "Bangalore, Karnataka",
		Status:          models.ShipmentArrived,
		CarbonFootprint: f(120.8), EnergyUsed: f(450), WaterUsed: f(800), WasteGenerated: f(12.5),
		ActualArrival: &arrived,
	}
	for _, item := range []*models.SupplyChainItem{cotton, panels} {
		if err := s.tx.Omit("Events", "Alerts").Create(item).Error; err != nil {
			return err
		}
	}

	events := []models.SupplyChainEvent{
		{
			ItemID: cotton.ID, EventType: "departure", Location: "Bangalore, Karnataka",
			Latitude: f(12.9716), Longitude: f(77.5946),
			Description: "Package departed from warehouse", Timestamp: s.now.AddDate(0, 0, -2),
		},
		{
			ItemID: cotton.ID, EventType: "checkpoint", Location: "Mumbai, Maharashtra",
			Latitude: f(19.0760), Longitude: f(72.8777),
			Description: "Package reached Mumbai distribution center", Timestamp: s.now.AddDate(0, 0, -1),
		},
		{
			ItemID: panels.ID, EventType: "arrival", Location: "Bangalore, Karnataka",
			Latitude: f(12.9716), Longitude: f(77.5946),
			Description: "Package delivered successfully", Timestamp: s.now,
		},
	}
	return s.tx.Create(&events).Error
}

func summarize(db *gorm.DB) (Summary, error) {
	var sum Summary
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &sum.Users},
		{&models.ClimateReading{}, &sum.Readings},
		{&models.EnvironmentalAlert{}, &sum.Alerts},
		{&models.Group{}, &sum.Groups},
		{&models.Post{}, &sum.Posts},
		{&models.EnvironmentalPledge{}, &sum.Pledges},
		{&models.SupplyChainItem{}, &sum.SupplyChain},
		{&models.SupplyChainEvent{}, &sum.ShipmentEvents},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Summary{}, fmt.Errorf("count %T: %w", c.model, err)
		}
	}
	return sum, nil
}
