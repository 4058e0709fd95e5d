package account_test

import (
	"itad/account"
	"itad/bizerror"
	"itad/persistence"
	"itad/session"
	"itad/testinfra"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Technicians", func() {
	var (
		testDatabase *testinfra.TestDatabase
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("itad_account")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(nil).AutoMigrate(&account.Technician{}).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	Describe("DefaultSecurityConfiguration", func() {
		It("should create the initial supervisor once", func() {
			Expect(account.DefaultSecurityConfiguration()).To(BeNil())
			Expect(account.DefaultSecurityConfiguration()).To(BeNil())

			var technicians []account.Technician
			Expect(testDatabase.DS.GormDB(nil).Find(&technicians).Error).To(BeNil())
			Expect(technicians).To(Equal([]account.Technician{{ID: 1, Name: "admin", Nickname: "Workshop Supervisor",
				Secret: account.HashSha256("admin123"), Role: session.PermSupervisor}}))

			info, err := account.Authenticate("admin", "admin123", testDatabase.DS.GormDB(nil))
			Expect(err).To(BeNil())
			Expect(info.Role).To(Equal(session.PermSupervisor))
		})
	})

	Describe("CreateTechnician", func() {
		It("should only be allowed for supervisors", func() {
			creation := account.TechnicianCreation{Name: "alice", Nickname: "Alice", Secret: "s3cret", Role: session.PermTechnician}

			_, err := account.CreateTechnician(&creation, testinfra.BuildSession(2, session.PermTechnician))
			Expect(err).To(Equal(bizerror.ErrForbidden))

			info, err := account.CreateTechnician(&creation, testinfra.BuildSession(1, session.PermSupervisor))
			Expect(err).To(BeNil())
			Expect(info.Name).To(Equal("alice"))
			Expect(info.DisplayName()).To(Equal("Alice"))

			detail, err := account.DetailTechnician(info.ID, testDatabase.DS.GormDB(nil))
			Expect(err).To(BeNil())
			Expect(*detail).To(Equal(*info))

			infos, err := account.QueryTechnicians(testinfra.BuildSession(2, session.PermTechnician))
			Expect(err).To(BeNil())
			Expect(infos).To(Equal([]account.TechnicianInfo{*info}))
		})
	})

	Describe("Authenticate", func() {
		It("should reject unknown name or wrong password", func() {
			Expect(account.DefaultSecurityConfiguration()).To(BeNil())

			_, err := account.Authenticate("admin", "wrong", testDatabase.DS.GormDB(nil))
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
			_, err = account.Authenticate("nobody", "admin123", testDatabase.DS.GormDB(nil))
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})
	})

	Describe("DetailTechnician", func() {
		It("should return not found error", func() {
			_, err := account.DetailTechnician(404, testDatabase.DS.GormDB(nil))
			Expect(err).To(Equal(bizerror.NewNotFoundError("technician", "404")))
		})
	})
})
