package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/models"
	"github.com/Dinesh751/hms-auth-service/internal/testutil"
)

func TestUserRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outer DBTX, fn func(tx pgx.Tx, repo *UserRepo)) {
		testutil.WithTx(outer, t, func(tx pgx.Tx) {
			fn(tx, &UserRepo{DB: tx})
		})
	}

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
				user, err := repo.CreateUser(t.Context(), "doctor@example.com", "hashedpassword", models.RoleDoctor)

				require.NoError(t, err)
				assert.NotEmpty(t, user.ID)
				assert.Equal(t, "doctor@example.com", user.Email)
				assert.Equal(t, "hashedpassword", user.HashedPassword)
				assert.Equal(t, models.RoleDoctor, user.Role)
				assert.True(t, user.Enabled, "new accounts start enabled")
				assert.False(t, user.CreatedAt.IsZero())
				assert.False(t, user.UpdatedAt.IsZero())
			})
		})

		t.Run("duplicate email", func(t *testing.T) {
			inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
				_, err := repo.CreateUser(t.Context(), "doctor@example.com", "hashedpassword", models.RoleDoctor)
				require.NoError(t, err, "first user creation should be ok")

				_, err = repo.CreateUser(t.Context(), "doctor@example.com", "otherhash", models.RolePatient)

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
			created, err := repo.CreateUser(t.Context(), "patient@example.com", "hashedpassword", models.RolePatient)
			require.NoError(t, err)

			t.Run("existing user", func(t *testing.T) {
				user, err := repo.GetUserByEmail(t.Context(), "patient@example.com")

				require.NoError(t, err)
				assert.Equal(t, created.ID, user.ID)
				assert.Equal(t, created.HashedPassword, user.HashedPassword)
			})

			t.Run("not found", func(t *testing.T) {
				_, err := repo.GetUserByEmail(t.Context(), "nobody@example.com")

				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})

			t.Run("disabled user still returned", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, repo *UserRepo) {
					_, err := repo.SetEnabled(t.Context(), "patient@example.com", false)
					require.NoError(t, err)

					user, err := repo.GetUserByEmail(t.Context(), "patient@example.com")

					require.NoError(t, err)
					assert.False(t, user.Enabled)
				})
			})
		})
	})

	t.Run("ExistsByEmail", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
			_, err := repo.CreateUser(t.Context(), "admin@example.com", "hashedpassword", models.RoleAdmin)
			require.NoError(t, err)

			exists, err := repo.ExistsByEmail(t.Context(), "admin@example.com")
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = repo.ExistsByEmail(t.Context(), "nobody@example.com")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	})

	t.Run("SetEnabled", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
			created, err := repo.CreateUser(t.Context(), "doctor@example.com", "hashedpassword", models.RoleDoctor)
			require.NoError(t, err)

			t.Run("disable and enable", func(t *testing.T) {
				user, err := repo.SetEnabled(t.Context(), "doctor@example.com", false)
				require.NoError(t, err)
				assert.False(t, user.Enabled)
				assert.True(t, user.UpdatedAt.After(created.UpdatedAt) || user.UpdatedAt.Equal(created.UpdatedAt))

				user, err = repo.SetEnabled(t.Context(), "doctor@example.com", true)
				require.NoError(t, err)
				assert.True(t, user.Enabled)
			})

			t.Run("not found", func(t *testing.T) {
				_, err := repo.SetEnabled(t.Context(), "nobody@example.com", false)

				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
			_, err := repo.CreateUser(t.Context(), "patient@example.com", "oldhash", models.RolePatient)
			require.NoError(t, err)

			t.Run("update ok", func(t *testing.T) {
				user, err := repo.UpdatePassword(t.Context(), "patient@example.com", "newhash")

				require.NoError(t, err)
				assert.Equal(t, "newhash", user.HashedPassword)
			})

			t.Run("not found", func(t *testing.T) {
				_, err := repo.UpdatePassword(t.Context(), "nobody@example.com", "newhash")

				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("Counts", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, repo *UserRepo) {
			for _, u := range []struct {
				email string
				role  models.Role
			}{
				{"a1@example.com", models.RoleAdmin},
				{"d1@example.com", models.RoleDoctor},
				{"d2@example.com", models.RoleDoctor},
				{"p1@example.com", models.RolePatient},
			} {
				_, err := repo.CreateUser(t.Context(), u.email, "hashedpassword", u.role)
				require.NoError(t, err)
			}

			_, err := repo.SetEnabled(t.Context(), "d2@example.com", false)
			require.NoError(t, err)

			doctors, err := repo.CountByRole(t.Context(), models.RoleDoctor)
			require.NoError(t, err)
			assert.EqualValues(t, 2, doctors)

			admins, err := repo.CountByRole(t.Context(), models.RoleAdmin)
			require.NoError(t, err)
			assert.EqualValues(t, 1, admins)

			enabled, err := repo.CountEnabled(t.Context())
			require.NoError(t, err)
			assert.EqualValues(t, 3, enabled)
		})
	})
}
