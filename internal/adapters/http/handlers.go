package http

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/dronepath/internal/pathfile"
)

const maxUploadBytes = 4 << 20

// ---- Sessions ----

// CreateSessionHandler starts a new playback session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Create(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/sessions/" + sess.ID)
		return c.Status(201).JSON(sess)
	}
}

// ListSessionsHandler returns live sessions, oldest first.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions, pg := Paginate(c, deps.Sessions.List())
		return c.JSON(PaginatedResponse{Data: sessions, Pagination: pg})
	}
}

// GetSessionHandler returns a session summary.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// DeleteSessionHandler stops a session and disconnects its stream clients.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Sessions.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		if deps.Hub != nil {
			deps.Hub.CloseSession(id)
		}
		return c.SendStatus(204)
	}
}

// ---- Path ----

// GetPathHandler exports the session path in the upload format.
func GetPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Sessions.Snapshot(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap.Path)
	}
}

// SetPathHandler replaces the path with a JSON array of waypoints.
func SetPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := pathfile.ParseJSON(c.Body())
		if err != nil {
			return errFromDomain(c, err)
		}
		sess, err := deps.Sessions.SetPath(c.UserContext(), c.Params("id"), path)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// UploadPathHandler accepts a multipart "file" field holding a JSON or GPX path.
func UploadPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return errBadRequest(c, "multipart field \"file\" is required")
		}
		if fh.Size > maxUploadBytes {
			return errBadRequest(c, fmt.Sprintf("file too large (max %d bytes)", maxUploadBytes))
		}

		f, err := fh.Open()
		if err != nil {
			return errBadRequest(c, "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return errBadRequest(c, "cannot read uploaded file")
		}

		sess, err := deps.Sessions.Upload(c.UserContext(), c.Params("id"), fh.Filename, data)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// AppendPointHandler adds a manually entered waypoint. Fields may be numbers
// or numeric strings.
func AppendPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entry pathfile.ManualEntry
		if err := c.BodyParser(&entry); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		w, err := entry.Waypoint()
		if err != nil {
			return errFromDomain(c, err)
		}
		sess, err := deps.Sessions.AppendPoint(c.UserContext(), c.Params("id"), w)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(201).JSON(sess)
	}
}

// RemovePointHandler removes the waypoint at :index.
func RemovePointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		sess, err := deps.Sessions.RemovePoint(c.UserContext(), c.Params("id"), index)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// ---- Playback controls ----

// ToggleHandler flips between paused and running.
func ToggleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.TogglePause(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// ResetHandler installs the default path.
func ResetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Reset(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// SeekHandler moves the cursor to {"index": n}.
func SeekHandler(deps *Dependencies) fiber.Handler {
	type seekRequest struct {
		Index *int `json:"index"`
	}

	return func(c *fiber.Ctx) error {
		var req seekRequest
		if err := c.BodyParser(&req); err != nil || req.Index == nil {
			return errBadRequest(c, "body must be {\"index\": <integer>}")
		}
		sess, err := deps.Sessions.Seek(c.UserContext(), c.Params("id"), *req.Index)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// ---- Rendering ----

// FrameHandler returns the latest frame: marker position and polyline.
func FrameHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Sessions.Frame(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(f)
	}
}

// ViewportHandler returns the bounds and zoom that fit the path.
func ViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vp, err := deps.Sessions.Viewport(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(vp)
	}
}

// GeoJSONHandler exports the path as a GeoJSON FeatureCollection.
func GeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Sessions.GeoJSON(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Content-Type", "application/geo+json")
		return c.Send(data)
	}
}

// ---- Library ----

// SavePathHandler stores the session path under {"name": "..."}.
func SavePathHandler(deps *Dependencies) fiber.Handler {
	type saveRequest struct {
		Name string `json:"name"`
	}

	return func(c *fiber.Ctx) error {
		var req saveRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		sp, err := deps.Sessions.Save(c.UserContext(), c.Params("id"), req.Name)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/paths/" + sp.ID)
		return c.Status(201).JSON(sp)
	}
}

// LoadPathHandler replaces the session path with a saved one.
func LoadPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Load(c.UserContext(), c.Params("id"), c.Params("pathID"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sess)
	}
}

// ListPathsHandler returns the newest saved paths without waypoints.
func ListPathsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		paths, err := deps.Library.List(c.UserContext(), limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paths)
	}
}

// GetSavedPathHandler returns one saved path with its waypoints.
func GetSavedPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sp, err := deps.Library.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(sp)
	}
}

// DeleteSavedPathHandler removes a saved path.
func DeleteSavedPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Library.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(204)
	}
}
