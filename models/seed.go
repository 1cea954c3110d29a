package models

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Development fixtures. Each seeder is a no-op when the service already has
// rows, so running with SEED=true is safe on every start.

func SeedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("is_superuser = ?", false).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Users already exist. Skipping seed.")
		return nil
	}

	log.Println("Seeding users...")

	seed := []struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
		Role      string
	}{
		{"teamleader1@example.com", "teamleader123", "John", "Leader", RoleTeamLeader},
		{"teamleader2@example.com", "teamleader123", "Jane", "Leader", RoleTeamLeader},
		{"member1@example.com", "member123", "Alice", "Member", RoleMember},
		{"member2@example.com", "member123", "Bob", "Member", RoleMember},
		{"member3@example.com", "member123", "Carol", "Member", RoleMember},
		{"member4@example.com", "member123", "Dave", "Member", RoleMember},
	}

	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := User{
			Email:        s.Email,
			PasswordHash: string(hash),
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			Role:         s.Role,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("✓ Created %s: %s", user.Role, user.Email)
	}

	// Superuser admin, created separately so it survives the count check
	var admins int64
	if err := db.Model(&User{}).Where("is_superuser = ?", true).Count(&admins).Error; err != nil {
		return err
	}
	if admins == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := User{
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			FirstName:    "Site",
			LastName:     "Admin",
			Role:         RoleAdmin,
			IsActive:     true,
			IsSuperuser:  true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Printf("✓ Created superuser: %s", admin.Email)
	}

	return nil
}

func SeedTeams(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Team{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Teams already exist. Skipping seed.")
		return nil
	}

	log.Println("Seeding teams...")

	// Leader and member IDs match the user seed order in the user service.
	seed := []struct {
		Name        string
		Description string
		LeaderID    uint
		LeaderName  string
		MemberIDs   []uint
		MemberNames []string
	}{
		{
			Name:        "Backend Team",
			Description: "Owns the services and APIs",
			LeaderID:    1, LeaderName: "John Leader",
			MemberIDs: []uint{3, 4}, MemberNames: []string{"Alice Member", "Bob Member"},
		},
		{
			Name:        "Frontend Team",
			Description: "Owns the web client",
			LeaderID:    2, LeaderName: "Jane Leader",
			MemberIDs: []uint{5, 6}, MemberNames: []string{"Carol Member", "Dave Member"},
		},
	}

	for _, s := range seed {
		err := db.Transaction(func(tx *gorm.DB) error {
			team := Team{Name: s.Name, Description: s.Description}
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			leader := TeamUser{
				TeamID:       team.ID,
				UserID:       s.LeaderID,
				UserFullName: s.LeaderName,
				LeadsTeam:    true,
			}
			if err := tx.Create(&leader).Error; err != nil {
				return err
			}
			for i, id := range s.MemberIDs {
				member := TeamUser{
					TeamID:       team.ID,
					UserID:       id,
					UserFullName: s.MemberNames[i],
				}
				if err := tx.Create(&member).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Printf("✓ Created team: %s", s.Name)
	}

	return nil
}

func SeedTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Task{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Tasks already exist. Skipping seed.")
		return nil
	}

	log.Println("Seeding tasks...")

	due := time.Now().AddDate(0, 0, 14)
	seed := []Task{
		{Title: "Set up CI pipeline", Description: "Build and test on every push", CreatedByUserID: 1, AssignedToUserID: 3, Status: StatusInProgress, DueDate: due, Priority: PriorityHigh, TeamID: 1},
		{Title: "Write API docs", Description: "Document the public endpoints", CreatedByUserID: 1, AssignedToUserID: 4, Status: StatusTodo, DueDate: due, Priority: PriorityMedium, TeamID: 1},
		{Title: "Redesign login page", Description: "New branding rollout", CreatedByUserID: 2, AssignedToUserID: 5, Status: StatusTodo, DueDate: due, Priority: PriorityLow, TeamID: 2},
		{Title: "Fix mobile layout", Description: "Sidebar overlaps content on small screens", CreatedByUserID: 2, AssignedToUserID: 6, Status: StatusDone, DueDate: due, Priority: PriorityMedium, TeamID: 2},
	}

	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			return err
		}
		log.Printf("✓ Created task: %s", seed[i].Title)
	}

	return nil
}
