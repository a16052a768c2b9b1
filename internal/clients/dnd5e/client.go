package dnd5e

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	apiEntities "github.com/fadedpez/dnd5e-api/entities"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"

	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
)

type client struct {
	client dnd5e.Interface
}

type Config struct {
	HttpClient *http.Client
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, dnderr.Validationf("cfg is required")
	}

	dndClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: cfg.HttpClient,
	})
	if err != nil {
		return nil, err
	}

	return &client{
		client: dndClient,
	}, nil
}

func (c *client) GetCreature(key string) (*CreatureTemplate, error) {
	monster, err := c.client.GetMonster(key)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get creature %s", key)
	}

	return apiToCreatureTemplate(monster), nil
}

func (c *client) ListCreaturesByCR(minCR, maxCR float64) ([]*CreatureTemplate, error) {
	// The API only filters by exact CR, so fetch each standard CR value in
	// the range and merge.
	creatures := make([]*CreatureTemplate, 0)
	processedKeys := make(map[string]bool)

	for _, cr := range crValuesInRange(minCR, maxCR) {
		crValue := cr
		refs, err := c.client.ListMonstersWithFilter(&dnd5e.ListMonstersInput{
			ChallengeRating: &crValue,
		})
		if err != nil {
			log.Printf("Failed to list creatures for CR %f: %v", cr, err)
			continue
		}

		for _, ref := range refs {
			if ref.Key == "" || processedKeys[ref.Key] {
				continue
			}
			monster, err := c.client.GetMonster(ref.Key)
			if err != nil {
				log.Printf("Failed to get creature %s: %v", ref.Key, err)
				continue
			}
			if template := apiToCreatureTemplate(monster); template != nil {
				creatures = append(creatures, template)
				processedKeys[ref.Key] = true
			}
		}
	}

	return creatures, nil
}

// crValuesInRange returns the standard D&D 5e CR values within [minCR, maxCR]
func crValuesInRange(minCR, maxCR float64) []float64 {
	allCRs := []float64{0, 0.125, 0.25, 0.5, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
		11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30}

	var result []float64
	for _, cr := range allCRs {
		if cr >= minCR && cr <= maxCR {
			result = append(result, cr)
		}
	}

	return result
}

func apiToCreatureTemplate(input *apiEntities.Monster) *CreatureTemplate {
	if input == nil {
		return nil
	}

	return &CreatureTemplate{
		Key:             input.Key,
		Name:            input.Name,
		Type:            input.Type,
		ArmorClass:      int(input.ArmorClass),
		HitPoints:       int(input.HitPoints),
		HitDice:         input.HitDice,
		ChallengeRating: float64(input.ChallengeRating),
		Actions:         apisToCreatureActions(input.MonsterActions),
	}
}

func apisToCreatureActions(input []*apiEntities.MonsterAction) []*CreatureAction {
	if input == nil {
		return nil
	}

	var actions []*CreatureAction
	for _, ma := range input {
		actions = append(actions, apiToCreatureAction(ma))
	}

	return actions
}

func apiToCreatureAction(input *apiEntities.MonsterAction) *CreatureAction {
	if input == nil {
		return nil
	}

	return &CreatureAction{
		Name:        input.Name,
		Description: input.Description,
		AttackBonus: int(input.AttackBonus),
		Damage:      apisToDamageRolls(input.Damage),
	}
}

func apisToDamageRolls(input []*apiEntities.Damage) []*DamageRoll {
	if input == nil {
		return nil
	}

	var rolls []*DamageRoll
	for _, d := range input {
		rolls = append(rolls, parseDamageDice(d.DamageDice))
	}

	return rolls
}

// parseDamageDice splits an expression like "2d6+3" into its parts
func parseDamageDice(expr string) *DamageRoll {
	dice := expr
	var bonus, diceSize, diceCount int

	parts := strings.Split(expr, "+")
	if len(parts) == 2 {
		bonus, _ = strconv.Atoi(parts[1])
		dice = parts[0]
	}

	d := strings.Split(dice, "d")
	if len(d) == 2 {
		diceCount, _ = strconv.Atoi(d[0])
		diceSize, _ = strconv.Atoi(d[1])
	}

	return &DamageRoll{
		DiceCount: diceCount,
		DiceSize:  diceSize,
		Bonus:     bonus,
	}
}
